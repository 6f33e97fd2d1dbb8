package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/suedwestenergie/contact/pkg/cache"
)

// RedisStore 基于 SETNX 的冷却存储，多实例共享
type RedisStore struct {
	cache *cache.RedisCache
}

// NewRedisStore 构造函数
func NewRedisStore(c *cache.RedisCache) *RedisStore {
	return &RedisStore{cache: c}
}

// Acquire 实现 domain.CooldownStore
func (s *RedisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.cache.SetNX(ctx, key, time.Now().Unix(), ttl)
	if err != nil {
		return false, fmt.Errorf("cooldown setnx: %w", err)
	}
	return ok, nil
}
