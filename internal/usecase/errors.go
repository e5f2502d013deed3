package usecase

import "errors"

// Error taxonomy of the financial lifecycle. Validation-class errors are
// recovered at the handler boundary; consistency errors are never silently
// swallowed.
var (
	// ErrNotFound - entity referenced by the request does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAvailabilityConflict - requested dates overlap a hold or a blocked
	// date; recoverable by choosing different dates.
	ErrAvailabilityConflict = errors.New("dates not available")

	// ErrInsufficientFunds - withdrawal or fee debit exceeds the available
	// balance; no state change.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadyTerminal - transition attempted on a completed/cancelled
	// booking or a non-pending transaction.
	ErrAlreadyTerminal = errors.New("already in terminal state")

	// ErrPaymentNotSettled - confirm attempted before the gateway signalled
	// settlement of the booking total.
	ErrPaymentNotSettled = errors.New("payment not settled")

	// ErrLedgerConsistency - a multi-entry ledger write failed partway; the
	// enclosing transaction rolls everything back.
	ErrLedgerConsistency = errors.New("ledger consistency violation")

	// ErrExternalDispatch - payout dispatch failed or timed out; recorded as
	// payout_status=failed and queued for manual remediation, never retried
	// automatically.
	ErrExternalDispatch = errors.New("external dispatch failed")

	// ErrForbidden - caller is not allowed to act on this entity.
	ErrForbidden = errors.New("forbidden")
)
