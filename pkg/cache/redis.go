// Package cache 提供 Redis 连接，供限流与告警冷却共享
package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suedwestenergie/contact/pkg/config"
	"github.com/suedwestenergie/contact/pkg/logger"
)

// RedisCache Redis 连接封装
type RedisCache struct {
	client *redis.Client
}

// Options 将配置转换为 go-redis 参数
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.MaxPoolSize,
		DialTimeout:  time.Duration(cfg.ConnTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
}

// New 建立连接并 ping，失败时关闭客户端
func New(cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(Options(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", client.Options().Addr, err)
	}

	logger.Info(ctx, "redis connected", "addr", client.Options().Addr, "db", cfg.DB)
	return &RedisCache{client: client}, nil
}

// SetNX 仅当 key 不存在时写入，返回是否写入成功
func (rc *RedisCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return rc.client.SetNX(ctx, key, value, ttl).Result()
}

// Ping 检查连通性
func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Close 关闭连接
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// GetClient 底层客户端，供 redis_rate 使用
func (rc *RedisCache) GetClient() *redis.Client {
	return rc.client
}
