package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/crickettrack/cricket-api/internal/model"
	"github.com/crickettrack/cricket-api/internal/repository"
	"github.com/crickettrack/cricket-api/pkg/logger"
)

// Service is the user directory and the scheduler's preference resolver.
type Service struct {
	repo   repository.UserRepository
	logger *logger.Logger
}

func NewService(repo repository.UserRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

// NotifiableEmail resolves a user's delivery address together with the
// opt-in flag. An unresolvable user counts as disabled rather than an
// error, so a deleted account can never stall a sweep.
func (s *Service) NotifiableEmail(ctx context.Context, id uuid.UUID) (string, bool) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		s.logger.Warn("could not resolve user for notification check", "user_id", id.String())
		return "", false
	}
	return u.Email, u.Preferences.EmailNotifications
}

// EmailNotificationsEnabled reports whether the user is opted into email
// delivery, fail-closed.
func (s *Service) EmailNotificationsEnabled(ctx context.Context, id uuid.UUID) bool {
	_, enabled := s.NotifiableEmail(ctx, id)
	return enabled
}

// ListNotifiable returns every active user opted into email notifications.
func (s *Service) ListNotifiable(ctx context.Context) ([]*model.User, error) {
	return s.repo.ListNotifiable(ctx)
}

func (s *Service) UpdatePreferences(ctx context.Context, id uuid.UUID, req *model.UpdatePreferencesRequest) (*model.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	prefs := u.Preferences
	if req.FavoriteTeams != nil {
		prefs.FavoriteTeams = req.FavoriteTeams
	}
	if req.AlertsEnabled != nil {
		prefs.AlertsEnabled = *req.AlertsEnabled
	}
	if req.EmailNotifications != nil {
		prefs.EmailNotifications = *req.EmailNotifications
	}

	if err := s.repo.UpdatePreferences(ctx, id, prefs); err != nil {
		return nil, err
	}

	u.Preferences = prefs
	return u, nil
}
