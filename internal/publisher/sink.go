package publisher

import (
	"context"
	"errors"
)

// ErrPublish wraps any failure to hand a payload to the broker.
var ErrPublish = errors.New("publish failed")

// Sink is a fire-and-forget message sink.
type Sink interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}
