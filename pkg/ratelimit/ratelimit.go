package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter defines the interface for rate limiting
type RateLimiter interface {
	// Allow checks if the request is allowed for the given key and limit
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// Limit defines the rate limit rule
type Limit struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
}

// RedisRateLimiter implements RateLimiter using Redis
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRedisRateLimiter creates a new RedisRateLimiter
func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		limiter: redis_rate.NewLimiter(rdb),
	}
}

// Allow checks if the request is allowed
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	res, err := r.limiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   limit.Rate,
		Period: limit.Period,
		Burst:  limit.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		ResetAfter: res.ResetAfter,
		RetryAfter: res.RetryAfter,
	}, nil
}

// memoryIdleTTL is how long an unused per-key limiter is kept.
const memoryIdleTTL = 10 * time.Minute

// memorySweepThreshold triggers a sweep of idle keys once the map grows past it.
const memorySweepThreshold = 4096

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryRateLimiter implements RateLimiter with per-key token buckets held in process.
// Used when no Redis is configured; limits are per instance.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryRateLimiter creates a new MemoryRateLimiter
func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// Allow checks if the request is allowed
func (m *MemoryRateLimiter) Allow(_ context.Context, key string, limit Limit) (*Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 || limit.Burst <= 0 {
		return nil, fmt.Errorf("invalid limit: %+v", limit)
	}

	now := m.now()

	m.mu.Lock()
	entry, ok := m.entries[key]
	if !ok {
		every := rate.Every(limit.Period / time.Duration(limit.Rate))
		entry = &memoryEntry{limiter: rate.NewLimiter(every, limit.Burst)}
		m.entries[key] = entry
	}
	entry.lastSeen = now
	if len(m.entries) > memorySweepThreshold {
		m.sweepLocked(now)
	}
	m.mu.Unlock()

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return &Result{Allowed: false}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return &Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: delay,
			ResetAfter: delay,
		}, nil
	}

	remaining := int(entry.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:    true,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: time.Duration(limit.Burst-remaining) * (limit.Period / time.Duration(limit.Rate)),
	}, nil
}

func (m *MemoryRateLimiter) sweepLocked(now time.Time) {
	for k, e := range m.entries {
		if now.Sub(e.lastSeen) > memoryIdleTTL {
			delete(m.entries, k)
		}
	}
}
