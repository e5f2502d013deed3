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

type SettlementRepository interface {
	Create(ctx context.Context, settlement *entity.PaymentSettlement) error
	FindSettledByBooking(ctx context.Context, bookingID uuid.UUID) (*entity.PaymentSettlement, error)
}

type settlementRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSettlementRepository(db database.PgxIface, log *zap.Logger) SettlementRepository {
	return &settlementRepository{
		db:  db,
		log: log.With(zap.String("repository", "settlement")),
	}
}

func (r *settlementRepository) Create(ctx context.Context, settlement *entity.PaymentSettlement) error {
	query := `
		INSERT INTO payment_settlements (id, booking_id, amount, status, gateway_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (booking_id, gateway_ref) DO NOTHING
	`

	_, err := database.From(ctx, r.db).Exec(ctx, query,
		settlement.ID,
		settlement.BookingID,
		settlement.Amount,
		settlement.Status,
		settlement.GatewayRef,
		settlement.CreatedAt,
		settlement.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to record payment settlement",
			zap.Error(err),
			zap.String("booking_id", settlement.BookingID.String()),
		)
		return fmt.Errorf("record settlement for booking %s: %w", settlement.BookingID.String(), err)
	}

	return nil
}

func (r *settlementRepository) FindSettledByBooking(ctx context.Context, bookingID uuid.UUID) (*entity.PaymentSettlement, error) {
	query := `
		SELECT id, booking_id, amount, status, gateway_ref, created_at, updated_at
		FROM payment_settlements
		WHERE booking_id = $1 AND status = 'settled'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var settlement entity.PaymentSettlement
	err := database.From(ctx, r.db).QueryRow(ctx, query, bookingID).Scan(
		&settlement.ID,
		&settlement.BookingID,
		&settlement.Amount,
		&settlement.Status,
		&settlement.GatewayRef,
		&settlement.CreatedAt,
		&settlement.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find settlement by booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find settlement for booking %s: %w", bookingID.String(), err)
	}

	return &settlement, nil
}
