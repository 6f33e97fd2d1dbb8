// Package cooldown 告警冷却状态的 Redis 与进程内实现
package cooldown

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 进程内冷却存储
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore 构造函数
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Acquire 实现 domain.CooldownStore
func (s *MemoryStore) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, k)
		}
	}
	if _, ok := s.expires[key]; ok {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}
