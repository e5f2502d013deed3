package repository

import (
	"context"
	"fmt"
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HostStrikeRepository interface {
	Create(ctx context.Context, strike *entity.HostStrike) error
	CountByHostSince(ctx context.Context, hostID uuid.UUID, since time.Time) (int64, error)
}

type hostStrikeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewHostStrikeRepository(db database.PgxIface, log *zap.Logger) HostStrikeRepository {
	return &hostStrikeRepository{
		db:  db,
		log: log.With(zap.String("repository", "host_strike")),
	}
}

func (r *hostStrikeRepository) Create(ctx context.Context, strike *entity.HostStrike) error {
	query := `
		INSERT INTO host_strikes (id, host_id, booking_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := database.From(ctx, r.db).Exec(ctx, query,
		strike.ID,
		strike.HostID,
		strike.BookingID,
		strike.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create host strike",
			zap.Error(err),
			zap.String("host_id", strike.HostID.String()),
			zap.String("booking_id", strike.BookingID.String()),
		)
		return fmt.Errorf("create strike for host %s: %w", strike.HostID.String(), err)
	}

	return nil
}

// CountByHostSince is the rolling window count behind the escalation ladder.
func (r *hostStrikeRepository) CountByHostSince(ctx context.Context, hostID uuid.UUID, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM host_strikes WHERE host_id = $1 AND created_at >= $2`

	var count int64
	err := database.From(ctx, r.db).QueryRow(ctx, query, hostID, since).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count host strikes",
			zap.Error(err),
			zap.String("host_id", hostID.String()),
		)
		return 0, fmt.Errorf("count strikes for host %s: %w", hostID.String(), err)
	}

	return count, nil
}
