package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prognosis/internal/attribution"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewMemory(time.Minute, 2, WithClock(clock))

	res := &attribution.Result{TargetClass: 1, Contributions: []attribution.Contribution{{Feature: "Age", Value: 0.1}}}
	require.NoError(t, c.Set(ctx, "a", res))

	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res, got)

	t.Run("miss on unknown key", func(t *testing.T) {
		_, ok, err := c.Get(ctx, "zzz")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("entries expire", func(t *testing.T) {
		now = now.Add(time.Minute)
		_, ok, err := c.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("capacity evicts the entry closest to expiry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "first", res))
		now = now.Add(time.Second)
		require.NoError(t, c.Set(ctx, "second", res))
		now = now.Add(time.Second)
		require.NoError(t, c.Set(ctx, "third", res))

		assert.Equal(t, 2, c.Len())
		_, ok, _ := c.Get(ctx, "first")
		assert.False(t, ok)
		_, ok, _ = c.Get(ctx, "third")
		assert.True(t, ok)
	})
}
