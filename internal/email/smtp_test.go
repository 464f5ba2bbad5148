package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/crickettrack/cricket-api/config"
	apperrors "github.com/crickettrack/cricket-api/pkg/errors"
	"github.com/crickettrack/cricket-api/pkg/logger"
)

func testDispatcher(t *testing.T, sendTimeout time.Duration) Dispatcher {
	t.Helper()
	return NewSMTPDispatcher(config.EmailConfig{
		Host:        "127.0.0.1",
		Port:        1, // nothing listens here
		Username:    "user",
		Password:    "pass",
		From:        "alerts@crickettrack.example",
		SendTimeout: sendTimeout,
	}, logger.Nop())
}

func TestSend_EmptyRecipientIsTransportError(t *testing.T) {
	d := testDispatcher(t, time.Second)

	err := d.Send(context.Background(), "", "subject", "<p>body</p>")

	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestSend_UnreachableServerIsTransportError(t *testing.T) {
	d := testDispatcher(t, 2*time.Second)

	err := d.Send(context.Background(), "fan@example.com", "subject", "<p>body</p>")

	// Refused connection or timeout, either way it stays a transport error.
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestSend_PanickingTransportReturnsTransportError(t *testing.T) {
	d := &smtpDispatcher{
		send:        func(*gomail.Message) error { panic("smtp client exploded") },
		from:        "alerts@crickettrack.example",
		sendTimeout: time.Second,
		logger:      logger.Nop(),
	}

	var err error
	assert.NotPanics(t, func() {
		err = d.Send(context.Background(), "fan@example.com", "subject", "<p>body</p>")
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestSend_RespectsCallerContext(t *testing.T) {
	d := testDispatcher(t, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := d.Send(ctx, "fan@example.com", "subject", "<p>body</p>")

	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}
