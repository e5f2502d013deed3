package usecase

import (
	"context"
	"fmt"
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/internal/data/repository"
	"rental-marketplace/internal/dto/request"
	"rental-marketplace/internal/dto/response"
	"rental-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WalletService is the ledger. Every balance change is recorded as a
// Transaction first; balances are always derived by summation, never stored.
type WalletService interface {
	ApplyTransaction(ctx context.Context, userID uuid.UUID, txnType entity.TransactionType, amount float64, relatedBookingID *uuid.UUID) (*entity.Transaction, error)
	ConfirmTransaction(ctx context.Context, txnID uuid.UUID) (*entity.Transaction, error)
	RefundTransaction(ctx context.Context, txnID uuid.UUID, reason *string) (*entity.Transaction, error)
	DeclineTransaction(ctx context.Context, txnID uuid.UUID, reason *string) (*entity.Transaction, error)

	Balance(ctx context.Context, userID uuid.UUID) (float64, error)
	AvailableBalance(ctx context.Context, userID uuid.UUID) (float64, error)
	GetWallet(ctx context.Context, userID string) (*response.WalletResponse, error)
	GetUserTransactions(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error)

	GrantReward(ctx context.Context, adminID string, req *request.GrantRewardRequest) (*response.TransactionResponse, error)
}

type walletService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewWalletService(repo *repository.Repository, log *zap.Logger) WalletService {
	return &walletService{
		repo: repo,
		log:  log.With(zap.String("service", "wallet")),
	}
}

func (s *walletService) ApplyTransaction(ctx context.Context, userID uuid.UUID, txnType entity.TransactionType, amount float64, relatedBookingID *uuid.UUID) (*entity.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("invalid amount %.2f: must be positive", amount)
	}

	now := time.Now()
	txn := &entity.Transaction{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:           userID,
		Type:             txnType,
		Amount:           utils.RoundMoney(amount),
		Status:           entity.TransactionStatusPending,
		RelatedBookingID: relatedBookingID,
		PayoutStatus:     entity.PayoutStatusNone,
	}

	if err := s.repo.Transaction.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("apply transaction: %w", err)
	}

	s.log.Info("Transaction recorded",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("type", string(txnType)),
		zap.Float64("amount", txn.Amount),
	)

	return txn, nil
}

// transition flips a pending transaction to a terminal status. Calling it on
// a transaction that is already terminal is a no-op that reports the existing
// state, so retried requests cannot re-apply an effect.
func (s *walletService) transition(ctx context.Context, txnID uuid.UUID, to entity.TransactionStatus, note *string) (*entity.Transaction, error) {
	txn, err := s.repo.Transaction.FindByID(ctx, txnID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, fmt.Errorf("transaction %s: %w", txnID.String(), ErrNotFound)
	}

	if txn.Status.IsTerminal() {
		s.log.Debug("Transaction already terminal, no-op",
			zap.String("transaction_id", txnID.String()),
			zap.String("status", string(txn.Status)),
		)
		return txn, nil
	}

	ok, err := s.repo.Transaction.UpdateStatusIf(ctx, txnID, entity.TransactionStatusPending, to, note)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race; report whatever terminal state won.
		return s.repo.Transaction.FindByID(ctx, txnID)
	}

	txn.Status = to
	if note != nil {
		txn.Note = note
	}

	s.log.Info("Transaction status changed",
		zap.String("transaction_id", txnID.String()),
		zap.String("status", string(to)),
	)

	return txn, nil
}

func (s *walletService) ConfirmTransaction(ctx context.Context, txnID uuid.UUID) (*entity.Transaction, error) {
	return s.transition(ctx, txnID, entity.TransactionStatusCompleted, nil)
}

func (s *walletService) RefundTransaction(ctx context.Context, txnID uuid.UUID, reason *string) (*entity.Transaction, error) {
	return s.transition(ctx, txnID, entity.TransactionStatusRefunded, reason)
}

func (s *walletService) DeclineTransaction(ctx context.Context, txnID uuid.UUID, reason *string) (*entity.Transaction, error) {
	return s.transition(ctx, txnID, entity.TransactionStatusFailed, reason)
}

func (s *walletService) Balance(ctx context.Context, userID uuid.UUID) (float64, error) {
	sum, err := s.repo.Transaction.SumCompletedByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("derive balance: %w", err)
	}
	return utils.RoundMoney(sum), nil
}

// AvailableBalance subtracts withdrawal requests still awaiting approval, so
// the amount a pending request reserves cannot be requested twice.
func (s *walletService) AvailableBalance(ctx context.Context, userID uuid.UUID) (float64, error) {
	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return 0, err
	}

	reserved, err := s.repo.Transaction.SumPendingWithdrawalsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("derive reserved balance: %w", err)
	}

	return utils.RoundMoney(balance - reserved), nil
}

func (s *walletService) GetWallet(ctx context.Context, userID string) (*response.WalletResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	balance, err := s.Balance(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	reserved, err := s.repo.Transaction.SumPendingWithdrawalsByUser(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("derive reserved balance: %w", err)
	}

	return &response.WalletResponse{
		UserID:    userID,
		Balance:   balance,
		Reserved:  utils.RoundMoney(reserved),
		Available: utils.RoundMoney(balance - reserved),
	}, nil
}

func (s *walletService) GetUserTransactions(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	txns, err := s.repo.Transaction.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user transactions",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("get user transactions: %w", err)
	}

	total, err := s.repo.Transaction.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count user transactions: %w", err)
	}

	txnResponses := make([]response.TransactionResponse, len(txns))
	for i, txn := range txns {
		txnResponses[i] = response.TransactionToResponse(txn)
	}

	return response.NewPaginatedResponse(txnResponses, req.Page, req.PerPage, total), nil
}

func (s *walletService) GrantReward(ctx context.Context, adminID string, req *request.GrantRewardRequest) (*response.TransactionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", req.UserID, err)
	}

	note := fmt.Sprintf("reward granted by admin %s: %s", adminID, req.Note)

	var txn *entity.Transaction
	err = s.repo.Atomic.WithinTx(ctx, func(ctx context.Context) error {
		var txErr error
		txn, txErr = s.ApplyTransaction(ctx, userUUID, entity.TransactionTypeReward, req.Amount, nil)
		if txErr != nil {
			return txErr
		}
		txn, txErr = s.transition(ctx, txn.ID, entity.TransactionStatusCompleted, &note)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("grant reward: %w", err)
	}

	s.log.Info("Reward granted",
		zap.String("user_id", req.UserID),
		zap.Float64("amount", req.Amount),
		zap.String("admin_id", adminID),
	)

	resp := response.TransactionToResponse(txn)
	return &resp, nil
}
