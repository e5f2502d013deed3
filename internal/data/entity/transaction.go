package entity

import (
	"github.com/google/uuid"
)

// PlatformAccountID is the reserved wallet account that receives the
// platform's fee share of every confirmed booking.
var PlatformAccountID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypePayment    TransactionType = "payment"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeReward     TransactionType = "reward"
)

// IsCredit reports whether this type adds to the account balance.
// Deposits, refunds and rewards are credits; payments and withdrawals
// are debits. Balance is always the signed sum of completed rows.
func (t TransactionType) IsCredit() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeRefund || t == TransactionTypeReward
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

func (s TransactionStatus) IsTerminal() bool {
	return s != TransactionStatusPending
}

// PayoutStatus tracks the external disbursement separately from the ledger
// debit. A failed payout does not undo the debit; it lands on the admin
// remediation queue instead.
type PayoutStatus string

const (
	PayoutStatusNone      PayoutStatus = "none"
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusCompleted PayoutStatus = "completed"
	PayoutStatusFailed    PayoutStatus = "failed"
)

// Transaction is an immutable ledger entry. Amount never changes after
// creation; only Status and PayoutStatus transition.
type Transaction struct {
	Base
	UserID            uuid.UUID         `db:"user_id"`
	Type              TransactionType   `db:"type"`
	Amount            float64           `db:"amount"`
	Status            TransactionStatus `db:"status"`
	RelatedBookingID  *uuid.UUID        `db:"related_booking_id"`
	PayoutStatus      PayoutStatus      `db:"payout_status"`
	PayoutDestination *string           `db:"payout_destination"`
	Note              *string           `db:"note"`
}
