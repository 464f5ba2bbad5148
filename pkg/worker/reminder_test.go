package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crickettrack/cricket-api/internal/model"
	apperrors "github.com/crickettrack/cricket-api/pkg/errors"
	"github.com/crickettrack/cricket-api/pkg/logger"
	"github.com/crickettrack/cricket-api/pkg/metrics"
)

var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.Metrics
)

// prometheus collectors register globally, so every test shares one set.
func sharedMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.New("reminder_test")
	})
	return testMetrics
}

type mockAlertStore struct {
	due       []*model.Alert
	queryErr  error
	markErr   error
	marked    []uuid.UUID
	markCalls int
}

func (m *mockAlertStore) QueryDue(ctx context.Context, now time.Time) ([]*model.Alert, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var due []*model.Alert
	for _, a := range m.due {
		if a.IsActive && !a.Sent && !a.TriggerTime.After(now) {
			due = append(due, a)
		}
	}
	return due, nil
}

func (m *mockAlertStore) MarkSent(ctx context.Context, alertID uuid.UUID) error {
	m.markCalls++
	if m.markErr != nil {
		return m.markErr
	}
	for _, a := range m.due {
		if a.ID == alertID {
			a.Sent = true
		}
	}
	m.marked = append(m.marked, alertID)
	return nil
}

type mockMatchRegistry struct {
	matches  []*model.LiveMatch
	queryErr error
	marked   []uuid.UUID
}

func (m *mockMatchRegistry) QueryUpcoming(ctx context.Context, start, end time.Time) ([]*model.LiveMatch, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var upcoming []*model.LiveMatch
	for _, lm := range m.matches {
		if lm.Status != model.MatchStatusScheduled {
			continue
		}
		if lm.StartTime.Before(start) || !lm.StartTime.Before(end) {
			continue
		}
		upcoming = append(upcoming, lm)
	}
	return upcoming, nil
}

func (m *mockMatchRegistry) MarkReminderSent(ctx context.Context, matchID uuid.UUID) error {
	for _, lm := range m.matches {
		if lm.ID == matchID && lm.Status == model.MatchStatusScheduled {
			lm.Status = model.MatchStatusReminderSent
			m.marked = append(m.marked, matchID)
		}
	}
	return nil
}

type mockUserDirectory struct {
	users map[uuid.UUID]*model.User
}

func (m *mockUserDirectory) NotifiableEmail(ctx context.Context, id uuid.UUID) (string, bool) {
	u, ok := m.users[id]
	if !ok {
		return "", false
	}
	return u.Email, u.Preferences.EmailNotifications
}

func (m *mockUserDirectory) ListNotifiable(ctx context.Context) ([]*model.User, error) {
	var notifiable []*model.User
	for _, u := range m.users {
		if u.Preferences.EmailNotifications {
			notifiable = append(notifiable, u)
		}
	}
	return notifiable, nil
}

type sentEmail struct {
	to      string
	subject string
}

type mockDispatcher struct {
	sent    []sentEmail
	failFor map[string]bool
}

func (m *mockDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.sent = append(m.sent, sentEmail{to: to, subject: subject})
	if m.failFor[to] {
		return apperrors.NewTransport("send failed", errors.New("smtp: connection refused"))
	}
	return nil
}

func newTestUser(enabled bool) *model.User {
	id := uuid.New()
	return &model.User{
		Base:  model.Base{ID: id},
		Name:  "Test User",
		Email: id.String() + "@example.com",
		Preferences: model.Preferences{
			AlertsEnabled:      true,
			EmailNotifications: enabled,
		},
	}
}

func newTestAlert(userID uuid.UUID, trigger time.Time) *model.Alert {
	return &model.Alert{
		Base:        model.Base{ID: uuid.New()},
		UserID:      userID,
		MatchID:     "match-1",
		AlertType:   model.AlertTypeMatchStart,
		Message:     "CSK vs MI is starting",
		IsActive:    true,
		TriggerTime: trigger,
	}
}

func newScheduler(alerts *mockAlertStore, matches *mockMatchRegistry, users *mockUserDirectory, dispatcher *mockDispatcher) *ReminderScheduler {
	return NewReminderScheduler(
		alerts, matches, users, dispatcher, nil,
		ReminderSchedulerConfig{
			TickInterval:   15 * time.Minute,
			ReminderWindow: 10 * time.Minute,
		},
		logger.Nop(),
		sharedMetrics(),
	)
}

func TestTick_DueAlertDeliveredAndMarked(t *testing.T) {
	owner := newTestUser(true)
	a := newTestAlert(owner.ID, time.Now().Add(-time.Minute))

	alerts := &mockAlertStore{due: []*model.Alert{a}}
	matches := &mockMatchRegistry{}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{owner.ID: owner}}
	dispatcher := &mockDispatcher{}

	newScheduler(alerts, matches, users, dispatcher).Tick(context.Background())

	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, owner.Email, dispatcher.sent[0].to)
	assert.Equal(t, alertSubject, dispatcher.sent[0].subject)
	assert.True(t, a.Sent)
}

func TestTick_FutureAlertUntouched(t *testing.T) {
	owner := newTestUser(true)
	a := newTestAlert(owner.ID, time.Now().Add(time.Hour))

	alerts := &mockAlertStore{due: []*model.Alert{a}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{owner.ID: owner}}
	dispatcher := &mockDispatcher{}

	newScheduler(alerts, &mockMatchRegistry{}, users, dispatcher).Tick(context.Background())

	assert.Empty(t, dispatcher.sent)
	assert.False(t, a.Sent)
	assert.Zero(t, alerts.markCalls)
}

func TestTick_SecondTickIsIdempotent(t *testing.T) {
	owner := newTestUser(true)
	a := newTestAlert(owner.ID, time.Now().Add(-time.Minute))

	alerts := &mockAlertStore{due: []*model.Alert{a}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{owner.ID: owner}}
	dispatcher := &mockDispatcher{}

	s := newScheduler(alerts, &mockMatchRegistry{}, users, dispatcher)
	s.Tick(context.Background())
	s.Tick(context.Background())

	assert.Len(t, dispatcher.sent, 1)
	assert.Equal(t, 1, alerts.markCalls)
}

func TestTick_OptedOutOwnerGetsNoEmailButAlertIsMarked(t *testing.T) {
	owner := newTestUser(false)
	a := newTestAlert(owner.ID, time.Now().Add(-time.Minute))

	alerts := &mockAlertStore{due: []*model.Alert{a}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{owner.ID: owner}}
	dispatcher := &mockDispatcher{}

	newScheduler(alerts, &mockMatchRegistry{}, users, dispatcher).Tick(context.Background())

	assert.Empty(t, dispatcher.sent)
	assert.True(t, a.Sent)
}

func TestTick_UnresolvableOwnerFailsClosed(t *testing.T) {
	a := newTestAlert(uuid.New(), time.Now().Add(-time.Minute))

	alerts := &mockAlertStore{due: []*model.Alert{a}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{}}
	dispatcher := &mockDispatcher{}

	newScheduler(alerts, &mockMatchRegistry{}, users, dispatcher).Tick(context.Background())

	assert.Empty(t, dispatcher.sent)
	assert.True(t, a.Sent)
}

func TestTick_TransportFailureDoesNotBlockSiblingsAndStillMarks(t *testing.T) {
	owner1 := newTestUser(true)
	owner2 := newTestUser(true)
	a1 := newTestAlert(owner1.ID, time.Now().Add(-2*time.Minute))
	a2 := newTestAlert(owner2.ID, time.Now().Add(-time.Minute))

	alerts := &mockAlertStore{due: []*model.Alert{a1, a2}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{
		owner1.ID: owner1,
		owner2.ID: owner2,
	}}
	dispatcher := &mockDispatcher{failFor: map[string]bool{owner1.Email: true}}

	newScheduler(alerts, &mockMatchRegistry{}, users, dispatcher).Tick(context.Background())

	// Both got their one attempt, both are marked regardless of outcome.
	assert.Len(t, dispatcher.sent, 2)
	assert.True(t, a1.Sent)
	assert.True(t, a2.Sent)
}

func TestTick_UpcomingMatchRemindsAllOptedInUsers(t *testing.T) {
	u1 := newTestUser(true)
	u2 := newTestUser(true)
	u3 := newTestUser(false)

	m := &model.LiveMatch{
		Base:      model.Base{ID: uuid.New()},
		Teams:     "CSK vs MI",
		StartTime: time.Now().Add(5 * time.Minute),
		Status:    model.MatchStatusScheduled,
	}

	matches := &mockMatchRegistry{matches: []*model.LiveMatch{m}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{
		u1.ID: u1, u2.ID: u2, u3.ID: u3,
	}}
	dispatcher := &mockDispatcher{}

	newScheduler(&mockAlertStore{}, matches, users, dispatcher).Tick(context.Background())

	assert.Len(t, dispatcher.sent, 2)
	for _, sent := range dispatcher.sent {
		assert.NotEqual(t, u3.Email, sent.to)
		assert.Equal(t, reminderSubject, sent.subject)
	}
	assert.Equal(t, model.MatchStatusReminderSent, m.Status)
}

func TestTick_RemindedMatchExcludedFromLaterSweeps(t *testing.T) {
	u := newTestUser(true)
	m := &model.LiveMatch{
		Base:      model.Base{ID: uuid.New()},
		Teams:     "IND vs AUS",
		StartTime: time.Now().Add(5 * time.Minute),
		Status:    model.MatchStatusScheduled,
	}

	matches := &mockMatchRegistry{matches: []*model.LiveMatch{m}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{u.ID: u}}
	dispatcher := &mockDispatcher{}

	s := newScheduler(&mockAlertStore{}, matches, users, dispatcher)
	s.Tick(context.Background())
	s.Tick(context.Background())

	assert.Len(t, dispatcher.sent, 1)
	assert.Len(t, matches.marked, 1)
}

func TestTick_MatchOutsideWindowNotSelected(t *testing.T) {
	u := newTestUser(true)
	m := &model.LiveMatch{
		Base:      model.Base{ID: uuid.New()},
		Teams:     "ENG vs NZ",
		StartTime: time.Now().Add(time.Hour),
		Status:    model.MatchStatusScheduled,
	}

	matches := &mockMatchRegistry{matches: []*model.LiveMatch{m}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{u.ID: u}}
	dispatcher := &mockDispatcher{}

	newScheduler(&mockAlertStore{}, matches, users, dispatcher).Tick(context.Background())

	assert.Empty(t, dispatcher.sent)
	assert.Equal(t, model.MatchStatusScheduled, m.Status)
}

func TestTick_PartialReminderFailureStillFlipsMarker(t *testing.T) {
	u1 := newTestUser(true)
	u2 := newTestUser(true)
	m := &model.LiveMatch{
		Base:      model.Base{ID: uuid.New()},
		Teams:     "PAK vs SA",
		StartTime: time.Now().Add(3 * time.Minute),
		Status:    model.MatchStatusScheduled,
	}

	matches := &mockMatchRegistry{matches: []*model.LiveMatch{m}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{u1.ID: u1, u2.ID: u2}}
	dispatcher := &mockDispatcher{failFor: map[string]bool{u1.Email: true}}

	newScheduler(&mockAlertStore{}, matches, users, dispatcher).Tick(context.Background())

	assert.Len(t, dispatcher.sent, 2)
	assert.Equal(t, model.MatchStatusReminderSent, m.Status)
}

func TestTick_AlertSweepFailureDoesNotBlockReminderSweep(t *testing.T) {
	u := newTestUser(true)
	m := &model.LiveMatch{
		Base:      model.Base{ID: uuid.New()},
		Teams:     "WI vs SL",
		StartTime: time.Now().Add(5 * time.Minute),
		Status:    model.MatchStatusScheduled,
	}

	alerts := &mockAlertStore{queryErr: apperrors.NewPersistence("db down", errors.New("connection refused"))}
	matches := &mockMatchRegistry{matches: []*model.LiveMatch{m}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{u.ID: u}}
	dispatcher := &mockDispatcher{}

	newScheduler(alerts, matches, users, dispatcher).Tick(context.Background())

	// Sweep B still ran to completion.
	assert.Len(t, dispatcher.sent, 1)
	assert.Equal(t, model.MatchStatusReminderSent, m.Status)
}

func TestTick_ReminderSweepFailureDoesNotBlockAlertSweep(t *testing.T) {
	owner := newTestUser(true)
	a := newTestAlert(owner.ID, time.Now().Add(-time.Minute))

	alerts := &mockAlertStore{due: []*model.Alert{a}}
	matches := &mockMatchRegistry{queryErr: apperrors.NewPersistence("db down", errors.New("connection refused"))}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{owner.ID: owner}}
	dispatcher := &mockDispatcher{}

	newScheduler(alerts, matches, users, dispatcher).Tick(context.Background())

	assert.Len(t, dispatcher.sent, 1)
	assert.True(t, a.Sent)
}

func TestTick_EmptySweepsAreNoOps(t *testing.T) {
	dispatcher := &mockDispatcher{}
	s := newScheduler(&mockAlertStore{}, &mockMatchRegistry{}, &mockUserDirectory{users: map[uuid.UUID]*model.User{}}, dispatcher)

	s.Tick(context.Background())

	assert.Empty(t, dispatcher.sent)
}

func TestNewReminderScheduler_RejectsZeroConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewReminderScheduler(
			&mockAlertStore{}, &mockMatchRegistry{}, &mockUserDirectory{}, &mockDispatcher{}, nil,
			ReminderSchedulerConfig{},
			logger.Nop(),
			sharedMetrics(),
		)
	})
}

// slowDispatcher blocks until released, to hold a tick open.
type slowDispatcher struct {
	started chan struct{}
	release chan struct{}
}

func (d *slowDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	d.started <- struct{}{}
	<-d.release
	return nil
}

func TestTick_OverlappingTickIsSkipped(t *testing.T) {
	owner := newTestUser(true)
	a := newTestAlert(owner.ID, time.Now().Add(-time.Minute))

	alerts := &mockAlertStore{due: []*model.Alert{a}}
	users := &mockUserDirectory{users: map[uuid.UUID]*model.User{owner.ID: owner}}
	dispatcher := &slowDispatcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}

	s := NewReminderScheduler(
		alerts, &mockMatchRegistry{}, users, dispatcher, nil,
		ReminderSchedulerConfig{
			TickInterval:   15 * time.Minute,
			ReminderWindow: 10 * time.Minute,
		},
		logger.Nop(),
		sharedMetrics(),
	)

	done := make(chan struct{})
	go func() {
		s.Tick(context.Background())
		close(done)
	}()

	<-dispatcher.started

	// Second tick fires while the first is mid-send: it must not mark or
	// send anything, just return.
	s.Tick(context.Background())
	assert.Zero(t, alerts.markCalls)

	close(dispatcher.release)
	<-done
	assert.Equal(t, 1, alerts.markCalls)
}
