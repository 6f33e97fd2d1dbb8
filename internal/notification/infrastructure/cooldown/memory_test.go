package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Acquire(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := s.Acquire(ctx, "a", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.Acquire(ctx, "a", 5*time.Minute)
	assert.False(t, ok)

	ok, _ = s.Acquire(ctx, "b", 5*time.Minute)
	assert.True(t, ok)

	now = now.Add(5 * time.Minute)
	ok, _ = s.Acquire(ctx, "a", 5*time.Minute)
	assert.True(t, ok)
	assert.Len(t, s.expires, 1)
}
