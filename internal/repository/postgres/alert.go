package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/crickettrack/cricket-api/pkg/errors"

	"github.com/crickettrack/cricket-api/internal/model"
	"github.com/crickettrack/cricket-api/internal/repository"
)

type alertRepository struct {
	BaseRepository
}

func NewAlertRepository(base BaseRepository) repository.AlertRepository {
	return &alertRepository{base}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) error {
	query := `
		INSERT INTO alerts (
			id, user_id, match_id, alert_type, message,
			is_active, trigger_time, sent, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	alert.ID = uuid.New()
	alert.IsActive = true
	alert.Sent = false
	alert.CreatedAt = time.Now()
	alert.UpdatedAt = alert.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			alert.ID,
			alert.UserID,
			alert.MatchID,
			alert.AlertType,
			alert.Message,
			alert.IsActive,
			alert.TriggerTime,
			alert.Sent,
			alert.CreatedAt,
			alert.UpdatedAt,
		)
		if err != nil {
			return apperrors.NewPersistence("failed to create alert", err)
		}
		return nil
	})
}

func (r *alertRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Alert, error) {
	query := `
		SELECT * FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var alerts []*model.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, userID); err != nil {
		return nil, apperrors.NewPersistence("failed to list alerts", err)
	}

	return alerts, nil
}

func (r *alertRepository) DeleteByOwner(ctx context.Context, alertID, userID uuid.UUID) error {
	// Ownership check folded into the predicate: a row owned by someone else
	// is reported the same way as a missing row.
	query := `
		DELETE FROM alerts
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, alertID, userID)
	if err != nil {
		return apperrors.NewPersistence("failed to delete alert", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewPersistence("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NotFound("alert", sql.ErrNoRows)
	}

	return nil
}

func (r *alertRepository) QueryDue(ctx context.Context, now time.Time) ([]*model.Alert, error) {
	query := `
		SELECT * FROM alerts
		WHERE is_active = true AND sent = false AND trigger_time <= $1
		ORDER BY trigger_time ASC
	`

	var alerts []*model.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, now); err != nil {
		return nil, apperrors.NewPersistence("failed to query due alerts", err)
	}

	return alerts, nil
}

func (r *alertRepository) MarkSent(ctx context.Context, alertID uuid.UUID) error {
	// sent only ever moves false to true; re-marking matches zero rows and
	// succeeds quietly.
	query := `
		UPDATE alerts
		SET sent = true, updated_at = $1
		WHERE id = $2 AND sent = false
	`

	if _, err := r.db.ExecContext(ctx, query, time.Now(), alertID); err != nil {
		return apperrors.NewPersistence("failed to mark alert sent", err)
	}

	return nil
}
