package alert

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/crickettrack/cricket-api/pkg/errors"

	"github.com/crickettrack/cricket-api/internal/model"
	"github.com/crickettrack/cricket-api/internal/repository"
)

// Service owns alert CRUD semantics. Delivery is the scheduler's job; this
// layer only validates and persists.
type Service struct {
	repo repository.AlertRepository
}

func NewService(repo repository.AlertRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateAlertRequest) (*model.Alert, error) {
	alertType := model.AlertType(req.AlertType)
	if !model.ValidAlertType(alertType) {
		return nil, apperrors.Validation("invalid alert type", nil)
	}

	triggerTime, err := time.Parse(time.RFC3339, req.TriggerTime)
	if err != nil {
		return nil, apperrors.Validation("invalid trigger time", err)
	}

	alert := &model.Alert{
		UserID:      userID,
		MatchID:     req.MatchID,
		AlertType:   alertType,
		Message:     req.Message,
		TriggerTime: triggerTime,
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	return alert, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Alert, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) DeleteByOwner(ctx context.Context, alertID, userID uuid.UUID) error {
	return s.repo.DeleteByOwner(ctx, alertID, userID)
}
