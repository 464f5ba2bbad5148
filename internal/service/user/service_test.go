package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crickettrack/cricket-api/internal/model"
	apperrors "github.com/crickettrack/cricket-api/pkg/errors"
	"github.com/crickettrack/cricket-api/pkg/logger"
)

type mockUserRepo struct {
	users   map[uuid.UUID]*model.User
	updated map[uuid.UUID]model.Preferences
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (m *mockUserRepo) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs model.Preferences) error {
	if m.updated == nil {
		m.updated = map[uuid.UUID]model.Preferences{}
	}
	m.updated[id] = prefs
	return nil
}

func (m *mockUserRepo) ListNotifiable(ctx context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, u := range m.users {
		if u.Preferences.EmailNotifications {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestNotifiableEmail(t *testing.T) {
	optedIn := &model.User{
		Base:        model.Base{ID: uuid.New()},
		Email:       "in@example.com",
		Preferences: model.Preferences{EmailNotifications: true},
	}
	optedOut := &model.User{
		Base:        model.Base{ID: uuid.New()},
		Email:       "out@example.com",
		Preferences: model.Preferences{EmailNotifications: false},
	}

	svc := NewService(&mockUserRepo{users: map[uuid.UUID]*model.User{
		optedIn.ID:  optedIn,
		optedOut.ID: optedOut,
	}}, logger.Nop())

	email, ok := svc.NotifiableEmail(context.Background(), optedIn.ID)
	assert.True(t, ok)
	assert.Equal(t, "in@example.com", email)

	_, ok = svc.NotifiableEmail(context.Background(), optedOut.ID)
	assert.False(t, ok)

	// Unknown user fails closed.
	_, ok = svc.NotifiableEmail(context.Background(), uuid.New())
	assert.False(t, ok)
}

func TestEmailNotificationsEnabled(t *testing.T) {
	optedIn := &model.User{Base: model.Base{ID: uuid.New()}, Preferences: model.Preferences{EmailNotifications: true}}
	optedOut := &model.User{Base: model.Base{ID: uuid.New()}, Preferences: model.Preferences{EmailNotifications: false}}

	svc := NewService(&mockUserRepo{users: map[uuid.UUID]*model.User{
		optedIn.ID:  optedIn,
		optedOut.ID: optedOut,
	}}, logger.Nop())

	assert.True(t, svc.EmailNotificationsEnabled(context.Background(), optedIn.ID))
	assert.False(t, svc.EmailNotificationsEnabled(context.Background(), optedOut.ID))

	// Unknown user fails closed.
	assert.False(t, svc.EmailNotificationsEnabled(context.Background(), uuid.New()))
}

func TestUpdatePreferences_PartialUpdate(t *testing.T) {
	u := &model.User{
		Base:        model.Base{ID: uuid.New()},
		Preferences: model.DefaultPreferences(),
	}
	repo := &mockUserRepo{users: map[uuid.UUID]*model.User{u.ID: u}}
	svc := NewService(repo, logger.Nop())

	disabled := false
	updated, err := svc.UpdatePreferences(context.Background(), u.ID, &model.UpdatePreferencesRequest{
		EmailNotifications: &disabled,
	})

	require.NoError(t, err)
	assert.False(t, updated.Preferences.EmailNotifications)
	// Untouched fields keep their defaults.
	assert.True(t, updated.Preferences.AlertsEnabled)
	assert.Equal(t, updated.Preferences, repo.updated[u.ID])
}

func TestUpdatePreferences_UnknownUser(t *testing.T) {
	svc := NewService(&mockUserRepo{users: map[uuid.UUID]*model.User{}}, logger.Nop())

	enabled := true
	_, err := svc.UpdatePreferences(context.Background(), uuid.New(), &model.UpdatePreferencesRequest{
		AlertsEnabled: &enabled,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
