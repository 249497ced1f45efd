package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAllow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("admits up to the limit then rejects", func(t *testing.T) {
		s := NewMemoryStore(WithClock(clock))

		for i := range 3 {
			res, err := s.Allow(ctx, "subject:dr-a", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, 2-i, res.Remaining)
		}

		res, err := s.Allow(ctx, "subject:dr-a", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 60, res.RetryAfter)
		assert.Equal(t, now.Add(time.Minute), res.ResetAt)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := NewMemoryStore(WithClock(clock))

		_, err := s.Allow(ctx, "ip:10.0.0.1", 1, time.Minute)
		require.NoError(t, err)
		res, err := s.Allow(ctx, "ip:10.0.0.2", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("window slides", func(t *testing.T) {
		current := now
		s := NewMemoryStore(WithClock(func() time.Time { return current }))

		_, err := s.Allow(ctx, "k", 1, time.Minute)
		require.NoError(t, err)

		current = now.Add(30 * time.Second)
		res, err := s.Allow(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 30, res.RetryAfter)

		current = now.Add(time.Minute)
		res, err = s.Allow(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})
}

func TestMemoryStoreForgetsIdleCallers(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore(WithClock(func() time.Time { return current }))

	for i := range 1000 {
		_, err := s.Allow(ctx, fmt.Sprintf("ip:10.0.%d.%d", i/256, i%256), 5, time.Minute)
		require.NoError(t, err)
	}
	require.Len(t, s.buckets, 1000)

	current = current.Add(time.Hour)
	res, err := s.Allow(ctx, "ip:192.0.2.1", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Len(t, s.buckets, 1, "only the active caller keeps a bucket")

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Contains(t, s.buckets, "ip:192.0.2.1")
}

func TestMemoryStoreZeroLimitKeepsNoBucket(t *testing.T) {
	s := NewMemoryStore()

	res, err := s.Allow(context.Background(), "ip:10.0.0.1", 0, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Empty(t, s.buckets)
}
