package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/crickettrack/cricket-api/pkg/errors"

	"github.com/crickettrack/cricket-api/internal/model"
	"github.com/crickettrack/cricket-api/internal/repository"
)

type matchRepository struct {
	BaseRepository
}

func NewMatchRepository(base BaseRepository) repository.MatchRepository {
	return &matchRepository{base}
}

func (r *matchRepository) Upsert(ctx context.Context, match *model.LiveMatch) error {
	// Ingestion never touches status on conflict: a match that already left
	// scheduled must not be pulled back in.
	query := `
		INSERT INTO live_matches (
			id, external_id, teams, venue, start_time, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO UPDATE SET
			teams = EXCLUDED.teams,
			venue = EXCLUDED.venue,
			start_time = EXCLUDED.start_time,
			updated_at = EXCLUDED.updated_at
	`

	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	if match.Status == "" {
		match.Status = model.MatchStatusScheduled
	}
	now := time.Now()
	if match.CreatedAt.IsZero() {
		match.CreatedAt = now
	}
	match.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		match.ID,
		match.ExternalID,
		match.Teams,
		match.Venue,
		match.StartTime,
		match.Status,
		match.CreatedAt,
		match.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewPersistence("failed to upsert match", err)
	}

	return nil
}

func (r *matchRepository) QueryUpcoming(ctx context.Context, start, end time.Time) ([]*model.LiveMatch, error) {
	query := `
		SELECT * FROM live_matches
		WHERE status = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time ASC
	`

	var matches []*model.LiveMatch
	if err := r.db.SelectContext(ctx, &matches, query, model.MatchStatusScheduled, start, end); err != nil {
		return nil, apperrors.NewPersistence("failed to query upcoming matches", err)
	}

	return matches, nil
}

func (r *matchRepository) MarkReminderSent(ctx context.Context, matchID uuid.UUID) error {
	// Only a scheduled match can transition; anything else matches zero rows,
	// which keeps the call idempotent.
	query := `
		UPDATE live_matches
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	_, err := r.db.ExecContext(ctx, query,
		model.MatchStatusReminderSent,
		time.Now(),
		matchID,
		model.MatchStatusScheduled,
	)
	if err != nil {
		return apperrors.NewPersistence("failed to mark reminder sent", err)
	}

	return nil
}
