package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels published by the scheduler, consumed by the realtime UI feed.
const (
	ChannelAlertDelivered = "alerts.delivered"
	ChannelMatchReminded  = "matches.reminded"
)
