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

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error)

	// State machine queries
	UpdateStatusIf(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error)
	MarkCancelledIf(ctx context.Context, bookingID uuid.UUID, from entity.BookingStatus, by entity.CancelActor) (bool, error)
	CountOverlapping(ctx context.Context, listingID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID, now time.Time) (int64, error)
	FindElapsedConfirmed(ctx context.Context, now time.Time, limit int) ([]*entity.Booking, error)
	ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, reference, listing_id, guest_id, host_id, check_in, check_out,
	guest_count, total_price, status, cancelled_by, hold_expires_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.ListingID,
		&booking.GuestID,
		&booking.HostID,
		&booking.CheckIn,
		&booking.CheckOut,
		&booking.GuestCount,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CancelledBy,
		&booking.HoldExpiresAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, reference, listing_id, guest_id, host_id, check_in, check_out,
			guest_count, total_price, status, cancelled_by, hold_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := database.From(ctx, r.db).Exec(ctx, query,
		booking.ID,
		booking.Reference,
		booking.ListingID,
		booking.GuestID,
		booking.HostID,
		booking.CheckIn,
		booking.CheckOut,
		booking.GuestCount,
		booking.TotalPrice,
		booking.Status,
		booking.CancelledBy,
		booking.HoldExpiresAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
			zap.String("guest_id", booking.GuestID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.Reference, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(database.From(ctx, r.db).QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guest_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := database.From(ctx, r.db).Query(ctx, query, guestID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by guest ID",
			zap.Error(err),
			zap.String("guest_id", guestID.String()),
		)
		return nil, fmt.Errorf("find bookings by guest ID %s: %w", guestID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE guest_id = $1`

	var count int64
	err := database.From(ctx, r.db).QueryRow(ctx, query, guestID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by guest ID",
			zap.Error(err),
			zap.String("guest_id", guestID.String()),
		)
		return 0, fmt.Errorf("count bookings by guest ID %s: %w", guestID.String(), err)
	}

	return count, nil
}

// UpdateStatusIf is the compare-and-set guard for all transitions: the write
// only lands when the row still holds the expected status. Returns false when
// a concurrent transition won.
func (r *bookingRepository) UpdateStatusIf(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	query := `UPDATE bookings SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := database.From(ctx, r.db).Exec(ctx, query, bookingID, from, to)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("update booking %s status %s->%s: %w", bookingID.String(), string(from), string(to), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) MarkCancelledIf(ctx context.Context, bookingID uuid.UUID, from entity.BookingStatus, by entity.CancelActor) (bool, error) {
	query := `
		UPDATE bookings SET status = $3, cancelled_by = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := database.From(ctx, r.db).Exec(ctx, query, bookingID, from, entity.BookingStatusCancelled, by)
	if err != nil {
		r.log.Error("Failed to mark booking cancelled",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("cancelled_by", string(by)),
		)
		return false, fmt.Errorf("cancel booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// CountOverlapping counts bookings on the listing holding any night of
// [checkIn, checkOut). Confirmed bookings always hold; pending bookings only
// hold while their TTL has not lapsed.
func (r *bookingRepository) CountOverlapping(ctx context.Context, listingID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID, now time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE listing_id = $1
		  AND check_in < $3 AND $2 < check_out
		  AND (status = 'confirmed' OR (status = 'pending' AND hold_expires_at > $4))
		  AND ($5::uuid IS NULL OR id <> $5)
	`

	var count int64
	err := database.From(ctx, r.db).QueryRow(ctx, query, listingID, checkIn, checkOut, now, excludeID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count overlapping bookings",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
		)
		return 0, fmt.Errorf("count overlapping bookings for listing %s: %w", listingID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindElapsedConfirmed(ctx context.Context, now time.Time, limit int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'confirmed' AND check_out <= $1
		ORDER BY check_out
		LIMIT $2
	`

	rows, err := database.From(ctx, r.db).Query(ctx, query, now, limit)
	if err != nil {
		r.log.Error("Failed to find elapsed confirmed bookings", zap.Error(err))
		return nil, fmt.Errorf("find elapsed confirmed bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// ExpireStaleHolds releases date holds of pending bookings past their TTL.
func (r *bookingRepository) ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE bookings SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending' AND hold_expires_at <= $1
	`

	result, err := database.From(ctx, r.db).Exec(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to expire stale holds", zap.Error(err))
		return 0, fmt.Errorf("expire stale holds: %w", err)
	}

	return result.RowsAffected(), nil
}
