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

type CancellationRequestRepository interface {
	Create(ctx context.Context, req *entity.CancellationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CancellationRequest, error)
	FindByStatus(ctx context.Context, status entity.CancellationStatus, limit, offset int) ([]*entity.CancellationRequest, error)
	ResolveIf(ctx context.Context, id uuid.UUID, to entity.CancellationStatus, reviewedBy uuid.UUID, notes *string) (bool, error)
}

type cancellationRequestRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCancellationRequestRepository(db database.PgxIface, log *zap.Logger) CancellationRequestRepository {
	return &cancellationRequestRepository{
		db:  db,
		log: log.With(zap.String("repository", "cancellation_request")),
	}
}

const cancellationColumns = `id, booking_id, guest_id, host_id, reason, status,
	reviewed_by, review_notes, created_at, updated_at`

func scanCancellationRequest(row pgx.Row) (*entity.CancellationRequest, error) {
	var req entity.CancellationRequest
	err := row.Scan(
		&req.ID,
		&req.BookingID,
		&req.GuestID,
		&req.HostID,
		&req.Reason,
		&req.Status,
		&req.ReviewedBy,
		&req.ReviewNotes,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *cancellationRequestRepository) Create(ctx context.Context, req *entity.CancellationRequest) error {
	query := `
		INSERT INTO cancellation_requests (id, booking_id, guest_id, host_id, reason, status,
			reviewed_by, review_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := database.From(ctx, r.db).Exec(ctx, query,
		req.ID,
		req.BookingID,
		req.GuestID,
		req.HostID,
		req.Reason,
		req.Status,
		req.ReviewedBy,
		req.ReviewNotes,
		req.CreatedAt,
		req.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create cancellation request",
			zap.Error(err),
			zap.String("booking_id", req.BookingID.String()),
		)
		return fmt.Errorf("create cancellation request for booking %s: %w", req.BookingID.String(), err)
	}

	return nil
}

func (r *cancellationRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CancellationRequest, error) {
	query := `SELECT ` + cancellationColumns + ` FROM cancellation_requests WHERE id = $1`

	req, err := scanCancellationRequest(database.From(ctx, r.db).QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find cancellation request by ID",
			zap.Error(err),
			zap.String("request_id", id.String()),
		)
		return nil, fmt.Errorf("find cancellation request by ID %s: %w", id.String(), err)
	}

	return req, nil
}

func (r *cancellationRequestRepository) FindByStatus(ctx context.Context, status entity.CancellationStatus, limit, offset int) ([]*entity.CancellationRequest, error) {
	query := `
		SELECT ` + cancellationColumns + `
		FROM cancellation_requests
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	rows, err := database.From(ctx, r.db).Query(ctx, query, status, limit, offset)
	if err != nil {
		r.log.Error("Failed to find cancellation requests by status",
			zap.Error(err),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("find cancellation requests with status %s: %w", string(status), err)
	}
	defer rows.Close()

	var reqs []*entity.CancellationRequest
	for rows.Next() {
		req, err := scanCancellationRequest(rows)
		if err != nil {
			r.log.Error("Failed to scan cancellation request row", zap.Error(err))
			return nil, fmt.Errorf("scan cancellation request row: %w", err)
		}
		reqs = append(reqs, req)
	}

	return reqs, nil
}

// ResolveIf resolves the request exactly once: the write only lands while the
// request is still pending.
func (r *cancellationRequestRepository) ResolveIf(ctx context.Context, id uuid.UUID, to entity.CancellationStatus, reviewedBy uuid.UUID, notes *string) (bool, error) {
	query := `
		UPDATE cancellation_requests
		SET status = $2, reviewed_by = $3, review_notes = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := database.From(ctx, r.db).Exec(ctx, query, id, to, reviewedBy, notes)
	if err != nil {
		r.log.Error("Failed to resolve cancellation request",
			zap.Error(err),
			zap.String("request_id", id.String()),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("resolve cancellation request %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}
