package email

import (
	"context"
)

// Dispatcher sends a single email through the configured transport. A failed
// send comes back as a TransportError result; nothing escapes this boundary,
// so a sweep can always continue past a bad recipient.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
