package repository

import (
	"context"

	"rental-marketplace/pkg/database"

	"go.uber.org/zap"
)

// TxRunner executes fn atomically. Multi-entry ledger writes (payment split,
// refund reversal) and the booking status change they belong to always go
// through here.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type pgxTxRunner struct {
	db database.PgxIface
}

func (t *pgxTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.WithTx(ctx, t.db, fn)
}

type Repository struct {
	User         UserRepository
	Listing      ListingRepository
	Booking      BookingRepository
	Transaction  TransactionRepository
	Cancellation CancellationRequestRepository
	HostStrike   HostStrikeRepository
	Settlement   SettlementRepository
	Atomic       TxRunner
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Listing:      NewListingRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		Transaction:  NewTransactionRepository(db, log),
		Cancellation: NewCancellationRequestRepository(db, log),
		HostStrike:   NewHostStrikeRepository(db, log),
		Settlement:   NewSettlementRepository(db, log),
		Atomic:       &pgxTxRunner{db: db},
	}
}
