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

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateReliability(ctx context.Context, id uuid.UUID, status entity.UserStatus, suspendedUntil *time.Time) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `
		SELECT id, email, role, status, suspended_until, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user entity.User
	err := database.From(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.Status,
		&user.SuspendedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}

	return &user, nil
}

// UpdateReliability applies the host escalation outcome. Identity fields
// stay owned by the identity provider; only the reliability state is ours.
func (r *userRepository) UpdateReliability(ctx context.Context, id uuid.UUID, status entity.UserStatus, suspendedUntil *time.Time) error {
	query := `UPDATE users SET status = $2, suspended_until = $3, updated_at = NOW() WHERE id = $1`

	result, err := database.From(ctx, r.db).Exec(ctx, query, id, status, suspendedUntil)
	if err != nil {
		r.log.Error("Failed to update user reliability",
			zap.Error(err),
			zap.String("user_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update reliability of user %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", id.String())
	}

	return nil
}
