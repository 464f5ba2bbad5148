package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/crickettrack/cricket-api/pkg/errors"

	"github.com/crickettrack/cricket-api/internal/model"
	"github.com/crickettrack/cricket-api/internal/repository"
)

type favoriteRepository struct {
	BaseRepository
}

func NewFavoriteRepository(base BaseRepository) repository.FavoriteRepository {
	return &favoriteRepository{base}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *model.Favorite) error {
	query := `
		INSERT INTO favorites (
			id, user_id, item_id, type, title, data, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, item_id, type) DO NOTHING
	`

	favorite.ID = uuid.New()
	favorite.CreatedAt = time.Now()
	favorite.UpdatedAt = favorite.CreatedAt

	if _, err := r.db.ExecContext(ctx, query,
		favorite.ID,
		favorite.UserID,
		favorite.ItemID,
		favorite.Type,
		favorite.Title,
		favorite.Data,
		favorite.CreatedAt,
		favorite.UpdatedAt,
	); err != nil {
		return apperrors.NewPersistence("failed to create favorite", err)
	}

	return nil
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Favorite, error) {
	query := `
		SELECT * FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var favorites []*model.Favorite
	if err := r.db.SelectContext(ctx, &favorites, query, userID); err != nil {
		return nil, apperrors.NewPersistence("failed to list favorites", err)
	}

	return favorites, nil
}

func (r *favoriteRepository) DeleteByOwner(ctx context.Context, favoriteID, userID uuid.UUID) error {
	query := `
		DELETE FROM favorites
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, favoriteID, userID)
	if err != nil {
		return apperrors.NewPersistence("failed to delete favorite", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewPersistence("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NotFound("favorite", sql.ErrNoRows)
	}

	return nil
}
