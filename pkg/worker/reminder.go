package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crickettrack/cricket-api/internal/model"

	"github.com/crickettrack/cricket-api/internal/email"
	"github.com/crickettrack/cricket-api/pkg/logger"
	"github.com/crickettrack/cricket-api/pkg/messaging"
	"github.com/crickettrack/cricket-api/pkg/metrics"
)

const (
	alertSubject    = "Cricket Match Alert"
	reminderSubject = "Match Starting Soon"
)

// AlertStore is the slice of the alert repository the scheduler needs.
type AlertStore interface {
	QueryDue(ctx context.Context, now time.Time) ([]*model.Alert, error)
	MarkSent(ctx context.Context, alertID uuid.UUID) error
}

// MatchRegistry is the slice of the match repository the scheduler needs.
type MatchRegistry interface {
	QueryUpcoming(ctx context.Context, start, end time.Time) ([]*model.LiveMatch, error)
	MarkReminderSent(ctx context.Context, matchID uuid.UUID) error
}

// UserDirectory resolves recipients and their opt-in flags. NotifiableEmail
// is fail-closed: an unresolvable owner reads as opted out.
type UserDirectory interface {
	NotifiableEmail(ctx context.Context, id uuid.UUID) (string, bool)
	ListNotifiable(ctx context.Context) ([]*model.User, error)
}

type ReminderSchedulerConfig struct {
	TickInterval   time.Duration
	ReminderWindow time.Duration
}

// ReminderScheduler runs two independent sweeps on a fixed tick: explicit
// user alerts that have come due, and automatic reminders for matches about
// to start. Each item gets exactly one delivery attempt per lifecycle
// transition; a transport failure never blocks the rest of a tick.
type ReminderScheduler struct {
	alerts     AlertStore
	matches    MatchRegistry
	users      UserDirectory
	dispatcher email.Dispatcher
	broker     messaging.Broker
	config     ReminderSchedulerConfig
	logger     *logger.Logger
	metrics    *metrics.Metrics

	// Guards against a slow tick overlapping the next one.
	tickMu sync.Mutex
}

func NewReminderScheduler(
	alerts AlertStore,
	matches MatchRegistry,
	users UserDirectory,
	dispatcher email.Dispatcher,
	broker messaging.Broker,
	config ReminderSchedulerConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ReminderScheduler {
	// Config validation instead of defaults
	if config.TickInterval <= 0 {
		panic("TickInterval must be greater than 0")
	}
	if config.ReminderWindow <= 0 {
		panic("ReminderWindow must be greater than 0")
	}

	return &ReminderScheduler{
		alerts:     alerts,
		matches:    matches,
		users:      users,
		dispatcher: dispatcher,
		broker:     broker,
		config:     config,
		logger:     logger,
		metrics:    metrics,
	}
}

func (s *ReminderScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	s.logger.Info("starting reminder scheduler",
		"tick_interval", s.config.TickInterval.String(),
		"reminder_window", s.config.ReminderWindow.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down reminder scheduler")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs both sweeps once. A tick that fires while the previous one is
// still running is skipped rather than stacked. Sweep errors are logged and
// never escape: the loop must survive every tick.
func (s *ReminderScheduler) Tick(ctx context.Context) {
	if !s.tickMu.TryLock() {
		s.metrics.TicksSkipped.Inc()
		s.logger.Warn("previous tick still running, skipping")
		return
	}
	defer s.tickMu.Unlock()

	now := time.Now()

	if err := s.sweepAlerts(ctx, now); err != nil {
		s.metrics.SweepErrors.WithLabelValues("alerts").Inc()
		s.logger.Error(err, "alert sweep aborted")
	}

	if err := s.sweepReminders(ctx, now); err != nil {
		s.metrics.SweepErrors.WithLabelValues("reminders").Inc()
		s.logger.Error(err, "reminder sweep aborted")
	}
}

// sweepAlerts delivers every due alert once. The sent marker is set after a
// single attempt even when the transport fails: at-most-one-attempt
// semantics, no retry storms.
func (s *ReminderScheduler) sweepAlerts(ctx context.Context, now time.Time) error {
	timer := prometheus.NewTimer(s.metrics.SweepLatency.WithLabelValues("alerts"))
	defer timer.ObserveDuration()

	due, err := s.alerts.QueryDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to query due alerts: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	for _, a := range due {
		s.processAlert(ctx, a)
	}

	s.logger.Info("processed due alerts", "count", len(due))
	return nil
}

func (s *ReminderScheduler) processAlert(ctx context.Context, a *model.Alert) {
	if email, ok := s.users.NotifiableEmail(ctx, a.UserID); !ok {
		s.metrics.AlertsSkipped.Inc()
	} else {
		body := fmt.Sprintf("<h2>Cricket Alert</h2><p>%s</p>", a.Message)
		if sendErr := s.dispatcher.Send(ctx, email, alertSubject, body); sendErr != nil {
			s.metrics.EmailsFailed.Inc()
			s.logger.Error(sendErr, "failed to deliver alert",
				"alert_id", a.ID.String(), "match_id", a.MatchID)
		} else {
			s.publish(ctx, messaging.ChannelAlertDelivered, map[string]interface{}{
				"alert_id": a.ID.String(),
				"user_id":  a.UserID.String(),
				"match_id": a.MatchID,
			})
		}
		s.metrics.AlertsProcessed.Inc()
	}

	// Marked regardless of the send outcome.
	if err := s.alerts.MarkSent(ctx, a.ID); err != nil {
		s.logger.Error(err, "failed to mark alert sent", "alert_id", a.ID.String())
	}
}

// sweepReminders emails every opted-in user about matches starting inside
// the reminder window, then flips the per-match marker. The marker is
// per-match, not per-recipient: a partial failure still flips it.
func (s *ReminderScheduler) sweepReminders(ctx context.Context, now time.Time) error {
	timer := prometheus.NewTimer(s.metrics.SweepLatency.WithLabelValues("reminders"))
	defer timer.ObserveDuration()

	upcoming, err := s.matches.QueryUpcoming(ctx, now, now.Add(s.config.ReminderWindow))
	if err != nil {
		return fmt.Errorf("failed to query upcoming matches: %w", err)
	}
	if len(upcoming) == 0 {
		return nil
	}

	recipients, err := s.users.ListNotifiable(ctx)
	if err != nil {
		return fmt.Errorf("failed to list notifiable users: %w", err)
	}

	for _, m := range upcoming {
		s.processMatch(ctx, m, recipients)
	}

	s.logger.Info("processed match reminders",
		"matches", len(upcoming), "recipients", len(recipients))
	return nil
}

func (s *ReminderScheduler) processMatch(ctx context.Context, m *model.LiveMatch, recipients []*model.User) {
	body := fmt.Sprintf(
		"<h2>Match Reminder</h2><p>%s starts at %s.</p>",
		m.Teams, m.StartTime.Format(time.RFC1123),
	)

	for _, u := range recipients {
		if err := s.dispatcher.Send(ctx, u.Email, reminderSubject, body); err != nil {
			s.metrics.EmailsFailed.Inc()
			s.logger.Error(err, "failed to deliver reminder",
				"match_id", m.ID.String(), "user_id", u.ID.String())
			continue
		}
		s.metrics.RemindersSent.Inc()
	}

	// Marker flips only after every recipient has had an attempt.
	if err := s.matches.MarkReminderSent(ctx, m.ID); err != nil {
		s.logger.Error(err, "failed to mark reminder sent", "match_id", m.ID.String())
		return
	}

	s.publish(ctx, messaging.ChannelMatchReminded, map[string]interface{}{
		"match_id":   m.ID.String(),
		"teams":      m.Teams,
		"start_time": m.StartTime,
	})
}

// publish is best effort: a broker outage never affects delivery markers.
func (s *ReminderScheduler) publish(ctx context.Context, channel string, payload interface{}) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, channel, payload); err != nil {
		s.logger.Warn("failed to publish event", "channel", channel)
	}
}
