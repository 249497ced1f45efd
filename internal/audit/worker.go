package audit

import (
	"context"
	"errors"
	"log/slog"
)

var ErrQueueFull = errors.New("audit queue full")

// Worker moves appends to a durable sink off the request path. Append only
// enqueues; Run drains the queue into the wrapped store.
type Worker struct {
	store  Store
	inbox  chan Event
	logger *slog.Logger
}

func NewWorker(store Store, size int, logger *slog.Logger) *Worker {
	if size <= 0 {
		size = 256
	}
	return &Worker{store: store, inbox: make(chan Event, size), logger: logger}
}

// Append enqueues the event, failing fast when the queue is full.
func (w *Worker) Append(_ context.Context, event Event) error {
	select {
	case w.inbox <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run persists queued events until ctx is cancelled, then flushes whatever
// is still buffered.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return ctx.Err()
		case event := <-w.inbox:
			w.persist(ctx, event)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case event := <-w.inbox:
			w.persist(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) persist(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.WarnContext(ctx, "audit sink append failed",
			"event_id", event.ID,
			"sink", sinkName(w.store),
			"error", err,
		)
	}
}
