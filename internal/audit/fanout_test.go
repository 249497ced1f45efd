package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ calls int }

func (f *failingStore) Append(context.Context, Event) error {
	f.calls++
	return errors.New("disk full")
}

func TestFanoutEmit(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("stamps id and time and reaches every sink", func(t *testing.T) {
		first, second := NewMemoryStore(), NewMemoryStore()
		f := NewFanout(nil, []Store{first, second}, WithClock(func() time.Time { return fixed }))

		f.Emit(context.Background(), Event{Action: ActionAssessmentEvaluated, RiskTier: "low"})

		for _, s := range []*MemoryStore{first, second} {
			events, err := s.ListRecent(context.Background(), 10)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.NotEmpty(t, events[0].ID)
			assert.Equal(t, fixed, events[0].Timestamp)
			assert.Equal(t, "low", events[0].RiskTier)
		}
	})

	t.Run("keeps caller supplied id", func(t *testing.T) {
		store := NewMemoryStore()
		f := NewFanout(nil, []Store{store})

		f.Emit(context.Background(), Event{ID: "evt-1", Action: ActionAssessmentRejected})

		events, err := store.ListRecent(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "evt-1", events[0].ID)
	})

	t.Run("sink failure is logged and does not stop other sinks", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		bad := &failingStore{}
		good := NewMemoryStore()
		f := NewFanout(logger, []Store{bad, good})

		f.Emit(context.Background(), Event{Action: ActionAssessmentFailed})

		assert.Equal(t, 1, bad.calls)
		events, err := good.ListRecent(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Contains(t, buf.String(), "audit sink append failed")
		assert.Contains(t, buf.String(), "sink=custom")
	})

	t.Run("nil fanout is a no-op", func(t *testing.T) {
		var f *Fanout
		assert.NotPanics(t, func() {
			f.Emit(context.Background(), Event{Action: ActionAssessmentEvaluated})
		})
	})
}

func TestMemoryStoreListRecent(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()
	for i := range 5 {
		require.NoError(t, store.Append(ctx, Event{ID: string(rune('a' + i)), Timestamp: base.Add(time.Duration(i) * time.Minute)}))
	}

	events, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e", events[0].ID)
	assert.Equal(t, "d", events[1].ID)

	store.Clear()
	events, err = store.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, events)
}
