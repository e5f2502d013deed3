package repository

import (
	"context"
	"fmt"
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	MarkPublishFeePaid(ctx context.Context, id uuid.UUID) error
	BlockedDatesBetween(ctx context.Context, listingID uuid.UUID, from, to time.Time) ([]time.Time, error)
	AddBlockedDate(ctx context.Context, blocked *entity.BlockedDate) error
	RemoveBlockedDate(ctx context.Context, listingID uuid.UUID, date time.Time) error
}

type listingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewListingRepository(db database.PgxIface, log *zap.Logger) ListingRepository {
	return &listingRepository{
		db:  db,
		log: log.With(zap.String("repository", "listing")),
	}
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	query := `
		SELECT id, host_id, title, nightly_price, publish_fee_paid, active, created_at, updated_at
		FROM listings
		WHERE id = $1
	`

	var listing entity.Listing
	err := database.From(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&listing.ID,
		&listing.HostID,
		&listing.Title,
		&listing.NightlyPrice,
		&listing.PublishFeePaid,
		&listing.Active,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find listing by ID",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return nil, fmt.Errorf("find listing by ID %s: %w", id.String(), err)
	}

	return &listing, nil
}

func (r *listingRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE listings SET active = $2, updated_at = NOW() WHERE id = $1`

	result, err := database.From(ctx, r.db).Exec(ctx, query, id, active)
	if err != nil {
		r.log.Error("Failed to set listing active flag",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return fmt.Errorf("set listing %s active=%t: %w", id.String(), active, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing %s not found", id.String())
	}

	return nil
}

func (r *listingRepository) MarkPublishFeePaid(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE listings SET publish_fee_paid = TRUE, updated_at = NOW() WHERE id = $1`

	result, err := database.From(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark publish fee paid",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return fmt.Errorf("mark publish fee paid for listing %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing %s not found", id.String())
	}

	return nil
}

// BlockedDatesBetween returns host-blocked dates intersecting [from, to).
func (r *listingRepository) BlockedDatesBetween(ctx context.Context, listingID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	query := `
		SELECT date
		FROM listing_blocked_dates
		WHERE listing_id = $1 AND date >= $2 AND date < $3
		ORDER BY date
	`

	rows, err := database.From(ctx, r.db).Query(ctx, query, listingID, from, to)
	if err != nil {
		r.log.Error("Failed to find blocked dates",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
		)
		return nil, fmt.Errorf("find blocked dates for listing %s: %w", listingID.String(), err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			r.log.Error("Failed to scan blocked date row", zap.Error(err))
			return nil, fmt.Errorf("scan blocked date row: %w", err)
		}
		dates = append(dates, date)
	}

	return dates, nil
}

func (r *listingRepository) AddBlockedDate(ctx context.Context, blocked *entity.BlockedDate) error {
	query := `
		INSERT INTO listing_blocked_dates (id, listing_id, date, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (listing_id, date) DO NOTHING
	`

	_, err := database.From(ctx, r.db).Exec(ctx, query,
		blocked.ID,
		blocked.ListingID,
		blocked.Date,
		blocked.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to add blocked date",
			zap.Error(err),
			zap.String("listing_id", blocked.ListingID.String()),
		)
		return fmt.Errorf("add blocked date for listing %s: %w", blocked.ListingID.String(), err)
	}

	return nil
}

func (r *listingRepository) RemoveBlockedDate(ctx context.Context, listingID uuid.UUID, date time.Time) error {
	query := `DELETE FROM listing_blocked_dates WHERE listing_id = $1 AND date = $2`

	_, err := database.From(ctx, r.db).Exec(ctx, query, listingID, date)
	if err != nil {
		r.log.Error("Failed to remove blocked date",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
		)
		return fmt.Errorf("remove blocked date for listing %s: %w", listingID.String(), err)
	}

	return nil
}
