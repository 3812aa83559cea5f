package publisher

import (
	"context"
	"log/slog"
)

// LogSink only logs; used for dry runs without a broker.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink that writes payloads to log.
func NewLogSink(log *slog.Logger) *LogSink { return &LogSink{log: log} }

// Publish logs the message and always succeeds.
func (l *LogSink) Publish(_ context.Context, topic string, payload []byte) error {
	l.log.Info("dry run, not publishing", "topic", topic, "payload", string(payload))
	return nil
}
