package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimiter_BurstThenDeny(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemoryRateLimiter()
	m.now = func() time.Time { return now }

	limit := Limit{Rate: 1, Period: time.Second, Burst: 2}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := m.Allow(ctx, "ip:1", limit)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := m.Allow(ctx, "ip:1", limit)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.InDelta(t, time.Second.Seconds(), res.RetryAfter.Seconds(), 0.01)

	// 其他 key 不受影响
	res, err = m.Allow(ctx, "ip:2", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	now = now.Add(time.Second)
	res, err = m.Allow(ctx, "ip:1", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemoryRateLimiter_InvalidLimit(t *testing.T) {
	_, err := NewMemoryRateLimiter().Allow(context.Background(), "k", Limit{})
	assert.Error(t, err)
}

func TestMemoryRateLimiter_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemoryRateLimiter()
	m.now = func() time.Time { return now }
	limit := Limit{Rate: 1, Period: time.Second, Burst: 1}

	_, err := m.Allow(context.Background(), "old", limit)
	require.NoError(t, err)

	now = now.Add(memoryIdleTTL + time.Minute)
	m.mu.Lock()
	m.sweepLocked(now)
	_, ok := m.entries["old"]
	m.mu.Unlock()
	assert.False(t, ok)
}
