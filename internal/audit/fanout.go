package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Fanout emits each event to every sink. Sink failures are logged and never
// surface to the caller: an audit outage must not fail an assessment.
type Fanout struct {
	sinks  []Store
	logger *slog.Logger
	now    func() time.Time
}

type FanoutOption func(*Fanout)

func WithClock(now func() time.Time) FanoutOption {
	return func(f *Fanout) {
		f.now = now
	}
}

func NewFanout(logger *slog.Logger, sinks []Store, opts ...FanoutOption) *Fanout {
	f := &Fanout{
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Emit stamps the event with an ID and timestamp when missing and appends it
// to every sink.
func (f *Fanout) Emit(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = f.now()
	}
	for _, sink := range f.sinks {
		if err := sink.Append(ctx, event); err != nil && f.logger != nil {
			f.logger.WarnContext(ctx, "audit sink append failed",
				"event_id", event.ID,
				"action", string(event.Action),
				"sink", sinkName(sink),
				"error", err,
			)
		}
	}
}

func sinkName(s Store) string {
	switch v := s.(type) {
	case *MemoryStore:
		return "memory"
	case *PostgresStore:
		return "postgres"
	case *KafkaPublisher:
		return "kafka"
	case *Worker:
		return "async:" + sinkName(v.store)
	default:
		return "custom"
	}
}
