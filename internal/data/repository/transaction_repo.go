package repository

import (
	"context"
	"fmt"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Transaction, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// Ledger queries
	UpdateStatusIf(ctx context.Context, txnID uuid.UUID, from, to entity.TransactionStatus, note *string) (bool, error)
	CompleteWithdrawalIf(ctx context.Context, txnID uuid.UUID, note *string) (bool, error)
	SetPayoutStatus(ctx context.Context, txnID uuid.UUID, status entity.PayoutStatus) error
	SumCompletedByUser(ctx context.Context, userID uuid.UUID) (float64, error)
	SumPendingWithdrawalsByUser(ctx context.Context, userID uuid.UUID) (float64, error)
	FindCompletedSplitByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Transaction, error)
	FindWithdrawalsByStatus(ctx context.Context, status entity.TransactionStatus, limit, offset int) ([]*entity.Transaction, error)
	FindFailedPayouts(ctx context.Context) ([]*entity.Transaction, error)
}

type transactionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactionRepository(db database.PgxIface, log *zap.Logger) TransactionRepository {
	return &transactionRepository{
		db:  db,
		log: log.With(zap.String("repository", "transaction")),
	}
}

const transactionColumns = `id, user_id, type, amount, status, related_booking_id,
	payout_status, payout_destination, note, created_at, updated_at`

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var txn entity.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&txn.Type,
		&txn.Amount,
		&txn.Status,
		&txn.RelatedBookingID,
		&txn.PayoutStatus,
		&txn.PayoutDestination,
		&txn.Note,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, amount, status, related_booking_id,
			payout_status, payout_destination, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := database.From(ctx, r.db).Exec(ctx, query,
		txn.ID,
		txn.UserID,
		txn.Type,
		txn.Amount,
		txn.Status,
		txn.RelatedBookingID,
		txn.PayoutStatus,
		txn.PayoutDestination,
		txn.Note,
		txn.CreatedAt,
		txn.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create transaction",
			zap.Error(err),
			zap.String("user_id", txn.UserID.String()),
			zap.String("type", string(txn.Type)),
			zap.Float64("amount", txn.Amount),
		)
		return fmt.Errorf("create %s transaction for user %s: %w", string(txn.Type), txn.UserID.String(), err)
	}

	return nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	txn, err := scanTransaction(database.From(ctx, r.db).QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transaction by ID",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return nil, fmt.Errorf("find transaction by ID %s: %w", id.String(), err)
	}

	return txn, nil
}

func (r *transactionRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := database.From(ctx, r.db).Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find transactions by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find transactions by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var txns []*entity.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

func (r *transactionRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE user_id = $1`

	var count int64
	err := database.From(ctx, r.db).QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count transactions by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count transactions by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

// UpdateStatusIf flips status only when the row still holds the expected one.
// Amount is immutable; status transitions are the only in-place mutation the
// ledger allows.
func (r *transactionRepository) UpdateStatusIf(ctx context.Context, txnID uuid.UUID, from, to entity.TransactionStatus, note *string) (bool, error) {
	query := `
		UPDATE transactions SET status = $3, note = COALESCE($4, note), updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := database.From(ctx, r.db).Exec(ctx, query, txnID, from, to, note)
	if err != nil {
		r.log.Error("Failed to update transaction status",
			zap.Error(err),
			zap.String("transaction_id", txnID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("update transaction %s status %s->%s: %w", txnID.String(), string(from), string(to), err)
	}

	return result.RowsAffected() > 0, nil
}

// CompleteWithdrawalIf flips a pending withdrawal to completed and marks its
// payout as pending dispatch in one write. Both columns move together: a
// crash can never leave the debit recorded without the dispatch intent.
func (r *transactionRepository) CompleteWithdrawalIf(ctx context.Context, txnID uuid.UUID, note *string) (bool, error) {
	query := `
		UPDATE transactions
		SET status = 'completed', payout_status = 'pending', note = COALESCE($2, note), updated_at = NOW()
		WHERE id = $1 AND type = 'withdrawal' AND status = 'pending'
	`

	result, err := database.From(ctx, r.db).Exec(ctx, query, txnID, note)
	if err != nil {
		r.log.Error("Failed to complete withdrawal",
			zap.Error(err),
			zap.String("transaction_id", txnID.String()),
		)
		return false, fmt.Errorf("complete withdrawal %s: %w", txnID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *transactionRepository) SetPayoutStatus(ctx context.Context, txnID uuid.UUID, status entity.PayoutStatus) error {
	query := `UPDATE transactions SET payout_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := database.From(ctx, r.db).Exec(ctx, query, txnID, status)
	if err != nil {
		r.log.Error("Failed to set payout status",
			zap.Error(err),
			zap.String("transaction_id", txnID.String()),
			zap.String("payout_status", string(status)),
		)
		return fmt.Errorf("set payout status of %s to %s: %w", txnID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found", txnID.String())
	}

	return nil
}

// SumCompletedByUser derives the wallet balance: signed sum over completed
// rows, credits positive and debits negative. Balance is never stored.
func (r *transactionRepository) SumCompletedByUser(ctx context.Context, userID uuid.UUID) (float64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type IN ('deposit', 'refund', 'reward') THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE user_id = $1 AND status = 'completed'
	`

	var sum float64
	err := database.From(ctx, r.db).QueryRow(ctx, query, userID).Scan(&sum)
	if err != nil {
		r.log.Error("Failed to sum completed transactions",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("sum completed transactions for user %s: %w", userID.String(), err)
	}

	return sum, nil
}

// SumPendingWithdrawalsByUser returns the amount reserved by withdrawal
// requests awaiting approval. Subtracted from the spendable balance so a
// pending request cannot be double-spent.
func (r *transactionRepository) SumPendingWithdrawalsByUser(ctx context.Context, userID uuid.UUID) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND type = 'withdrawal' AND status = 'pending'
	`

	var sum float64
	err := database.From(ctx, r.db).QueryRow(ctx, query, userID).Scan(&sum)
	if err != nil {
		r.log.Error("Failed to sum pending withdrawals",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("sum pending withdrawals for user %s: %w", userID.String(), err)
	}

	return sum, nil
}

func (r *transactionRepository) FindCompletedSplitByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE related_booking_id = $1 AND type = 'deposit' AND status = 'completed'
		ORDER BY created_at
	`

	rows, err := database.From(ctx, r.db).Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find split transactions by booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find split transactions for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var txns []*entity.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

func (r *transactionRepository) FindWithdrawalsByStatus(ctx context.Context, status entity.TransactionStatus, limit, offset int) ([]*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE type = 'withdrawal' AND status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	rows, err := database.From(ctx, r.db).Query(ctx, query, status, limit, offset)
	if err != nil {
		r.log.Error("Failed to find withdrawals by status",
			zap.Error(err),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("find withdrawals with status %s: %w", string(status), err)
	}
	defer rows.Close()

	var txns []*entity.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

// FindFailedPayouts lists completed withdrawals that need manual admin
// remediation: dispatch failed outright, or the row has sat without a
// dispatch outcome longer than the grace period (a crash between the debit
// and the dispatch leaves payout_status at none or pending). The ledger
// debit stands either way.
func (r *transactionRepository) FindFailedPayouts(ctx context.Context) ([]*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE type = 'withdrawal' AND status = 'completed'
		  AND (payout_status = 'failed'
		       OR (payout_status IN ('none', 'pending') AND updated_at < NOW() - INTERVAL '30 minutes'))
		ORDER BY updated_at
	`

	rows, err := database.From(ctx, r.db).Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find failed payouts", zap.Error(err))
		return nil, fmt.Errorf("find failed payouts: %w", err)
	}
	defer rows.Close()

	var txns []*entity.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}
