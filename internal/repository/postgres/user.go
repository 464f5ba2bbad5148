package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/crickettrack/cricket-api/pkg/errors"

	"github.com/crickettrack/cricket-api/internal/model"
	"github.com/crickettrack/cricket-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, status, preferences, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			user.ID,
			user.Name,
			user.Email,
			user.PasswordHash,
			user.Status,
			user.Preferences,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return apperrors.NewPersistence("failed to create user", err)
		}
		return nil
	})
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.NewPersistence("failed to get user", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT * FROM users WHERE email = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.NewPersistence("failed to get user by email", err)
	}

	return &user, nil
}

func (r *userRepository) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs model.Preferences) error {
	query := `
		UPDATE users
		SET preferences = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, prefs, time.Now(), id)
	if err != nil {
		return apperrors.NewPersistence("failed to update preferences", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewPersistence("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user", sql.ErrNoRows)
	}

	return nil
}

func (r *userRepository) ListNotifiable(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT * FROM users
		WHERE status = $1 AND (preferences->>'email_notifications')::boolean = true
	`

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, model.UserStatusActive); err != nil {
		return nil, apperrors.NewPersistence("failed to list notifiable users", err)
	}

	return users, nil
}
