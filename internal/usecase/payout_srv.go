package usecase

import (
	"context"
	"fmt"
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/internal/data/repository"
	"rental-marketplace/internal/dto/request"
	"rental-marketplace/internal/dto/response"
	"rental-marketplace/internal/gateway"
	"rental-marketplace/internal/queue"
	"rental-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PayoutService handles the withdrawal queue: hosts request, admins approve
// or decline. An approved withdrawal debits the wallet first and only then
// dispatches to the external payout rail; a failed dispatch keeps the debit
// and parks the row on the remediation queue.
type PayoutService interface {
	RequestWithdrawal(ctx context.Context, userID string, req *request.WithdrawalRequest) (*response.TransactionResponse, error)
	ApproveWithdrawal(ctx context.Context, adminID, txnID string) (*response.TransactionResponse, error)
	DeclineWithdrawal(ctx context.Context, adminID, txnID string, req *request.DeclineWithdrawalRequest) (*response.TransactionResponse, error)

	PendingWithdrawals(ctx context.Context, req *request.PaginatedRequest) ([]response.TransactionResponse, error)
	FailedPayouts(ctx context.Context) ([]response.TransactionResponse, error)
}

type payoutService struct {
	repo       *repository.Repository
	wallet     WalletService
	dispatcher gateway.PayoutDispatcher
	notifier   gateway.Notifier
	config     *utils.Config
	log        *zap.Logger
}

func NewPayoutService(
	repo *repository.Repository,
	wallet WalletService,
	dispatcher gateway.PayoutDispatcher,
	notifier gateway.Notifier,
	config *utils.Config,
	log *zap.Logger,
) PayoutService {
	return &payoutService{
		repo:       repo,
		wallet:     wallet,
		dispatcher: dispatcher,
		notifier:   notifier,
		config:     config,
		log:        log.With(zap.String("service", "payout")),
	}
}

// RequestWithdrawal reserves the amount as a pending withdrawal row. The
// available-balance check and the insert run in one transaction so two
// concurrent requests cannot both reserve the same funds.
func (s *payoutService) RequestWithdrawal(ctx context.Context, userID string, req *request.WithdrawalRequest) (*response.TransactionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	amount := utils.RoundMoney(req.Amount)
	if amount < s.config.Payout.MinWithdrawal {
		return nil, fmt.Errorf("withdrawal amount %.2f below minimum %.2f", amount, s.config.Payout.MinWithdrawal)
	}

	destination := req.Destination
	now := time.Now()
	txn := &entity.Transaction{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:            userUUID,
		Type:              entity.TransactionTypeWithdrawal,
		Amount:            amount,
		Status:            entity.TransactionStatusPending,
		PayoutStatus:      entity.PayoutStatusNone,
		PayoutDestination: &destination,
	}

	err = s.repo.Atomic.WithinTx(ctx, func(ctx context.Context) error {
		available, txErr := s.wallet.AvailableBalance(ctx, userUUID)
		if txErr != nil {
			return txErr
		}
		if amount > available {
			return fmt.Errorf("requested %.2f, available %.2f: %w", amount, available, ErrInsufficientFunds)
		}
		return s.repo.Transaction.Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Withdrawal requested",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("user_id", userID),
		zap.Float64("amount", amount),
	)

	resp := response.TransactionToResponse(txn)
	return &resp, nil
}

// ApproveWithdrawal re-checks the balance, completes the ledger debit, then
// dispatches externally. The order matters: money is deducted before it
// leaves, so a crash between the two steps can only strand funds on our
// side, never pay out twice. A dispatch failure is reported to the caller
// but the debit stands.
func (s *payoutService) ApproveWithdrawal(ctx context.Context, adminID, txnID string) (*response.TransactionResponse, error) {
	id, err := uuid.Parse(txnID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction ID format %s: %w", txnID, err)
	}

	txn, err := s.repo.Transaction.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("approve withdrawal: %w", err)
	}
	if txn == nil || txn.Type != entity.TransactionTypeWithdrawal {
		return nil, fmt.Errorf("withdrawal %s: %w", txnID, ErrNotFound)
	}
	if txn.Status.IsTerminal() {
		return nil, fmt.Errorf("withdrawal %s is %s: %w", txnID, string(txn.Status), ErrAlreadyTerminal)
	}

	note := fmt.Sprintf("approved by admin %s", adminID)
	err = s.repo.Atomic.WithinTx(ctx, func(ctx context.Context) error {
		// The wallet may have been drained since the request was made (a
		// cancellation-reversal debit is not balance-gated), so the balance
		// is checked again right before the debit lands.
		balance, txErr := s.wallet.Balance(ctx, txn.UserID)
		if txErr != nil {
			return txErr
		}
		if txn.Amount > balance {
			return fmt.Errorf("withdrawal %.2f exceeds balance %.2f: %w", txn.Amount, balance, ErrInsufficientFunds)
		}

		ok, txErr := s.repo.Transaction.CompleteWithdrawalIf(ctx, id, &note)
		if txErr != nil {
			return txErr
		}
		if !ok {
			return fmt.Errorf("withdrawal %s: %w", txnID, ErrAlreadyTerminal)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	txn.Status = entity.TransactionStatusCompleted
	txn.PayoutStatus = entity.PayoutStatusPending
	txn.Note = &note

	destination := ""
	if txn.PayoutDestination != nil {
		destination = *txn.PayoutDestination
	}

	dispatchErr := s.dispatcher.Dispatch(ctx, destination, txn.Amount, txn.ID.String())
	if dispatchErr != nil {
		// No automatic retry. The debit stands; the row lands on the
		// remediation queue for manual handling.
		txn.PayoutStatus = entity.PayoutStatusFailed
		if err := s.repo.Transaction.SetPayoutStatus(ctx, id, entity.PayoutStatusFailed); err != nil {
			return nil, err
		}

		s.log.Error("Payout dispatch failed, withdrawal queued for remediation",
			zap.Error(dispatchErr),
			zap.String("transaction_id", txnID),
			zap.Float64("amount", txn.Amount),
		)

		s.notifier.Notify(ctx, queue.EventPayoutFailed, queue.WithdrawalEvent{
			TransactionID: txnID,
			UserID:        txn.UserID.String(),
			Amount:        txn.Amount,
			Decision:      "approved",
			PayoutStatus:  string(entity.PayoutStatusFailed),
			OccurredAt:    time.Now(),
		})

		return nil, fmt.Errorf("withdrawal %s approved but dispatch failed: %w", txnID, ErrExternalDispatch)
	}

	txn.PayoutStatus = entity.PayoutStatusCompleted
	if err := s.repo.Transaction.SetPayoutStatus(ctx, id, entity.PayoutStatusCompleted); err != nil {
		return nil, err
	}

	s.log.Info("Withdrawal approved and dispatched",
		zap.String("transaction_id", txnID),
		zap.String("admin_id", adminID),
		zap.Float64("amount", txn.Amount),
	)

	s.notifier.Notify(ctx, queue.EventWithdrawalDecided, queue.WithdrawalEvent{
		TransactionID: txnID,
		UserID:        txn.UserID.String(),
		Amount:        txn.Amount,
		Decision:      "approved",
		PayoutStatus:  string(entity.PayoutStatusCompleted),
		OccurredAt:    time.Now(),
	})

	resp := response.TransactionToResponse(txn)
	return &resp, nil
}

// DeclineWithdrawal releases the reservation: the row flips to failed with
// the admin's reason and the amount becomes spendable again.
func (s *payoutService) DeclineWithdrawal(ctx context.Context, adminID, txnID string, req *request.DeclineWithdrawalRequest) (*response.TransactionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(txnID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction ID format %s: %w", txnID, err)
	}

	txn, err := s.repo.Transaction.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("decline withdrawal: %w", err)
	}
	if txn == nil || txn.Type != entity.TransactionTypeWithdrawal {
		return nil, fmt.Errorf("withdrawal %s: %w", txnID, ErrNotFound)
	}
	if txn.Status.IsTerminal() {
		return nil, fmt.Errorf("withdrawal %s is %s: %w", txnID, string(txn.Status), ErrAlreadyTerminal)
	}

	note := fmt.Sprintf("declined by admin %s: %s", adminID, req.Reason)
	ok, err := s.repo.Transaction.UpdateStatusIf(ctx, id, entity.TransactionStatusPending, entity.TransactionStatusFailed, &note)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("withdrawal %s: %w", txnID, ErrAlreadyTerminal)
	}

	txn.Status = entity.TransactionStatusFailed
	txn.Note = &note

	s.log.Info("Withdrawal declined",
		zap.String("transaction_id", txnID),
		zap.String("admin_id", adminID),
		zap.String("reason", req.Reason),
	)

	s.notifier.Notify(ctx, queue.EventWithdrawalDecided, queue.WithdrawalEvent{
		TransactionID: txnID,
		UserID:        txn.UserID.String(),
		Amount:        txn.Amount,
		Decision:      "declined",
		PayoutStatus:  string(txn.PayoutStatus),
		OccurredAt:    time.Now(),
	})

	resp := response.TransactionToResponse(txn)
	return &resp, nil
}

func (s *payoutService) PendingWithdrawals(ctx context.Context, req *request.PaginatedRequest) ([]response.TransactionResponse, error) {
	txns, err := s.repo.Transaction.FindWithdrawalsByStatus(ctx, entity.TransactionStatusPending, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list pending withdrawals: %w", err)
	}

	responses := make([]response.TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = response.TransactionToResponse(txn)
	}
	return responses, nil
}

func (s *payoutService) FailedPayouts(ctx context.Context) ([]response.TransactionResponse, error) {
	txns, err := s.repo.Transaction.FindFailedPayouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list failed payouts: %w", err)
	}

	responses := make([]response.TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = response.TransactionToResponse(txn)
	}
	return responses, nil
}
