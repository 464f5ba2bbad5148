package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/crickettrack/cricket-api/internal/model"
)

// AlertRepository is the persisted collection of user-created alerts. The
// scheduler mutates nothing but the sent marker.
type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Alert, error)
	// DeleteByOwner removes the alert only when it belongs to userID. Absent
	// and not-owned are indistinguishable to the caller.
	DeleteByOwner(ctx context.Context, alertID, userID uuid.UUID) error
	// QueryDue returns alerts with is_active, not sent, trigger_time <= now.
	// Pure read, safe to call repeatedly.
	QueryDue(ctx context.Context, now time.Time) ([]*model.Alert, error)
	// MarkSent is idempotent; marking an already-sent alert is a no-op.
	MarkSent(ctx context.Context, alertID uuid.UUID) error
}

// MatchRepository is the registry of tracked fixtures.
type MatchRepository interface {
	Upsert(ctx context.Context, match *model.LiveMatch) error
	// QueryUpcoming returns scheduled matches with start_time in [start, end).
	QueryUpcoming(ctx context.Context, start, end time.Time) ([]*model.LiveMatch, error)
	// MarkReminderSent flips scheduled to reminder-sent; idempotent.
	MarkReminderSent(ctx context.Context, matchID uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, prefs model.Preferences) error
	// ListNotifiable returns active users with email notifications enabled.
	ListNotifiable(ctx context.Context) ([]*model.User, error)
}

type FavoriteRepository interface {
	Create(ctx context.Context, favorite *model.Favorite) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Favorite, error)
	DeleteByOwner(ctx context.Context, favoriteID, userID uuid.UUID) error
}
