// Package breaker 提供下游调用的熔断器构造
package breaker

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/suedwestenergie/contact/pkg/logger"
)

// Settings 熔断器参数
type Settings struct {
	// 连续失败多少次后熔断
	ConsecutiveFailures uint32
	// 熔断后多久进入半开状态
	OpenTimeout time.Duration
}

// DefaultSettings 默认参数
var DefaultSettings = Settings{
	ConsecutiveFailures: 5,
	OpenTimeout:         30 * time.Second,
}

// New 创建命名熔断器，状态变化写入日志
func New(name string, s Settings) *gobreaker.CircuitBreaker {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = DefaultSettings.ConsecutiveFailures
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = DefaultSettings.OpenTimeout
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}
