// Package domain 运维告警的领域模型
package domain

import (
	"context"
	"time"
)

// Channel 告警渠道
type Channel string

const (
	ChannelEmail Channel = "email" // 告警邮件
	ChannelSMS   Channel = "sms"   // 告警短信
)

// Alert 一条严重错误告警
type Alert struct {
	// Code 告警代码，同一代码在冷却期内只发送一次
	Code string
	// Title 告警标题
	Title string
	// Message 错误描述
	Message string
	// Context 附加上下文，例如 submission_id
	Context map[string]string
	// OccurredAt 发生时间
	OccurredAt time.Time
}

// Sender 告警发送接口
type Sender interface {
	// Channel 渠道名称
	Channel() Channel
	// Configured 是否具备发送条件
	Configured() bool
	// Send 发送告警
	Send(ctx context.Context, a *Alert) error
}

// CooldownStore 告警冷却状态存储
type CooldownStore interface {
	// Acquire 在 ttl 内首次调用返回 true，之后返回 false
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
