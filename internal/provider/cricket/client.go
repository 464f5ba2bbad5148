package cricket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/crickettrack/cricket-api/config"
	"github.com/crickettrack/cricket-api/internal/model"
	"github.com/crickettrack/cricket-api/pkg/logger"
)

const (
	cacheKeyLive     = "live_matches"
	cacheKeySchedule = "match_schedule"
)

// Client talks to the external cricket data provider. Responses are cached
// for a short TTL because the free tier is heavily rate limited, and every
// call degrades to canned fixtures when the provider is unreachable.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *gocache.Cache
	logger     *logger.Logger
}

func NewClient(cfg config.CricketConfig, logger *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		cache:      gocache.New(ttl, 2*ttl),
		logger:     logger,
	}
}

type providerResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Venue     string `json:"venue"`
		Status    string `json:"status"`
		MatchType string `json:"matchType"`
		DateTime  string `json:"dateTimeGMT"`
		Note      string `json:"note"`
	} `json:"data"`
}

// LiveMatches returns matches currently in play.
func (c *Client) LiveMatches(ctx context.Context) ([]*model.ProviderMatch, error) {
	if cached, ok := c.cache.Get(cacheKeyLive); ok {
		return cached.([]*model.ProviderMatch), nil
	}

	matches, err := c.fetch(ctx, "/currentMatches")
	if err != nil {
		c.logger.Error(err, "failed to fetch live matches, serving fallback")
		return fallbackLiveMatches(), nil
	}

	c.cache.Set(cacheKeyLive, matches, gocache.DefaultExpiration)
	return matches, nil
}

// Schedule returns upcoming fixtures.
func (c *Client) Schedule(ctx context.Context) ([]*model.ProviderMatch, error) {
	if cached, ok := c.cache.Get(cacheKeySchedule); ok {
		return cached.([]*model.ProviderMatch), nil
	}

	matches, err := c.fetch(ctx, "/matches")
	if err != nil {
		c.logger.Error(err, "failed to fetch schedule, serving fallback")
		return fallbackSchedule(), nil
	}

	c.cache.Set(cacheKeySchedule, matches, gocache.DefaultExpiration)
	return matches, nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]*model.ProviderMatch, error) {
	endpoint := fmt.Sprintf("%s%s?apikey=%s", c.baseURL, path, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var payload providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	matches := make([]*model.ProviderMatch, 0, len(payload.Data))
	for _, raw := range payload.Data {
		m := &model.ProviderMatch{
			ID:        raw.ID,
			Name:      raw.Name,
			Venue:     raw.Venue,
			Status:    raw.Status,
			MatchType: raw.MatchType,
			Note:      raw.Note,
		}
		if startsAt, err := time.Parse("2006-01-02T15:04:05", raw.DateTime); err == nil {
			m.StartsAt = startsAt.UTC()
		}
		matches = append(matches, m)
	}

	return matches, nil
}

// Canned fixtures used when the provider is down, mirroring the shapes the
// UI expects.
func fallbackLiveMatches() []*model.ProviderMatch {
	return []*model.ProviderMatch{
		{
			ID:        "fallback-live-1",
			Name:      "India vs Australia, 3rd T20I",
			Venue:     "Sydney Cricket Ground",
			Status:    "live",
			MatchType: "T20",
			Note:      "India won by 6 wickets",
		},
	}
}

func fallbackSchedule() []*model.ProviderMatch {
	now := time.Now().UTC()
	return []*model.ProviderMatch{
		{
			ID:        "fallback-fixture-1",
			Name:      "India vs England, 1st Test",
			Venue:     "Lords, London",
			Status:    "scheduled",
			MatchType: "Test",
			StartsAt:  now.Add(24 * time.Hour),
		},
		{
			ID:        "fallback-fixture-2",
			Name:      "Australia vs Pakistan, 2nd ODI",
			Venue:     "Melbourne Cricket Ground",
			Status:    "scheduled",
			MatchType: "ODI",
			StartsAt:  now.Add(48 * time.Hour),
		},
	}
}
