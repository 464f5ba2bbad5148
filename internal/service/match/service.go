package match

import (
	"context"
	"time"

	"github.com/crickettrack/cricket-api/internal/model"
	"github.com/crickettrack/cricket-api/internal/repository"
	"github.com/crickettrack/cricket-api/pkg/logger"
)

// Provider is the slice of the cricket data client this service needs.
type Provider interface {
	LiveMatches(ctx context.Context) ([]*model.ProviderMatch, error)
	Schedule(ctx context.Context) ([]*model.ProviderMatch, error)
}

// Service fronts the match registry and the external data provider. Fixture
// ingestion is the only writer of scheduled rows; the scheduler later flips
// them to reminder-sent.
type Service struct {
	repo     repository.MatchRepository
	provider Provider
	logger   *logger.Logger
}

func NewService(repo repository.MatchRepository, provider Provider, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		logger:   logger,
	}
}

func (s *Service) LiveMatches(ctx context.Context) ([]*model.ProviderMatch, error) {
	return s.provider.LiveMatches(ctx)
}

func (s *Service) Schedule(ctx context.Context) ([]*model.ProviderMatch, error) {
	return s.provider.Schedule(ctx)
}

// IngestFixtures pulls the provider schedule into the registry. Rows that
// already left scheduled keep their status; only teams/venue/start time are
// refreshed.
func (s *Service) IngestFixtures(ctx context.Context) error {
	fixtures, err := s.provider.Schedule(ctx)
	if err != nil {
		return err
	}

	for _, fixture := range fixtures {
		if fixture.StartsAt.IsZero() || !fixture.StartsAt.After(time.Now()) {
			continue
		}

		match := &model.LiveMatch{
			ExternalID: fixture.ID,
			Teams:      fixture.Name,
			Venue:      fixture.Venue,
			StartTime:  fixture.StartsAt,
			Status:     model.MatchStatusScheduled,
		}
		if err := s.repo.Upsert(ctx, match); err != nil {
			s.logger.Error(err, "failed to ingest fixture", "external_id", fixture.ID)
			continue
		}
	}

	return nil
}
