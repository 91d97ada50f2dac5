package messaging

import (
	"context"
	"fmt"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// EntityChannel names the channel for one entity's state-change stream.
// Subscribers of a single entity channel see its events in publish order;
// nothing is guaranteed across channels.
func EntityChannel(kind string, id fmt.Stringer) string {
	return fmt.Sprintf("linkup.%s.%s", kind, id.String())
}

// UserChannel is the per-recipient notification stream.
func UserChannel(id fmt.Stringer) string {
	return EntityChannel("user", id)
}
