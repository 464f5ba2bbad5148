package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/crickettrack/cricket-api/config"
	apperrors "github.com/crickettrack/cricket-api/pkg/errors"
	"github.com/crickettrack/cricket-api/pkg/logger"
)

type smtpDispatcher struct {
	send        func(*gomail.Message) error
	from        string
	sendTimeout time.Duration
	logger      *logger.Logger
}

// NewSMTPDispatcher builds a Dispatcher over a gomail SMTP dialer.
func NewSMTPDispatcher(cfg config.EmailConfig, logger *logger.Logger) Dispatcher {
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &smtpDispatcher{
		send: func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		},
		from:        cfg.From,
		sendTimeout: timeout,
		logger:      logger,
	}
}

func (d *smtpDispatcher) Send(ctx context.Context, to, subject, htmlBody string) (err error) {
	// The dispatcher is the error boundary for delivery: a panicking
	// transport must still come back to the caller as a TransportError.
	defer func() {
		if p := recover(); p != nil {
			err = apperrors.NewTransport("email transport panicked", fmt.Errorf("%v", p))
		}
	}()

	if to == "" {
		return apperrors.NewTransport("empty recipient address", nil)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", d.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	// gomail has no dial deadline of its own, so the send runs under an
	// explicit timeout.
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		// A panic is only recoverable on the goroutine that raised it, so
		// the transport call needs its own guard; the outer one covers the
		// message-building path.
		defer func() {
			if p := recover(); p != nil {
				done <- apperrors.NewTransport("email transport panicked", fmt.Errorf("%v", p))
			}
		}()
		done <- d.send(msg)
	}()

	select {
	case <-ctx.Done():
		return apperrors.NewTransport("email send timed out", ctx.Err())
	case sendErr := <-done:
		if sendErr != nil {
			return apperrors.NewTransport("failed to send email", sendErr)
		}
	}

	d.logger.Debug("email sent", "to", to, "subject", subject)
	return nil
}
