// Package domain 联系表单服务的领域模型
package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotConfigured 下游未配置时返回，投递记为 skipped
var ErrNotConfigured = errors.New("sink not configured")

// Submission 一次联系表单提交，仅存在于单次请求内
type Submission struct {
	// ID 仅用于日志关联
	ID      string
	Name    string
	Email   string
	Phone   string
	Company string
	Message string
	// SubmittedAt 提交时间
	SubmittedAt time.Time
}

// NewSubmission 创建提交，去除首尾空白
func NewSubmission(id, name, email, phone, company, message string, submittedAt time.Time) *Submission {
	return &Submission{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Email:       strings.TrimSpace(email),
		Phone:       strings.TrimSpace(phone),
		Company:     strings.TrimSpace(company),
		Message:     strings.TrimSpace(message),
		SubmittedAt: submittedAt,
	}
}

// Sink 投递目标
type Sink string

const (
	SinkNinox Sink = "ninox" // 外部表格数据库
	SinkEmail Sink = "email" // 通知邮件
)

// Outcome 投递结果
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// OutcomeOf 将投递错误映射为结果
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeDelivered
	case errors.Is(err, ErrNotConfigured):
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

// RecordWriter 在外部表格数据库中创建记录
type RecordWriter interface {
	// CreateRecord 返回外部记录 ID
	CreateRecord(ctx context.Context, s *Submission) (string, error)
}

// Notifier 发送提交通知邮件
type Notifier interface {
	NotifySubmission(ctx context.Context, s *Submission) error
}

// DeliveryRecord 单个目标的投递记录，不含表单字段内容
type DeliveryRecord struct {
	SubmissionID string
	Sink         Sink
	Outcome      Outcome
	ExternalID   string
	Error        string
	Duration     time.Duration
	CreatedAt    time.Time
}

// OutcomeCount 按目标和结果聚合的计数
type OutcomeCount struct {
	Sink    Sink
	Outcome Outcome
	Count   int64
}

// DeliveryJournal 投递日志仓储接口
type DeliveryJournal interface {
	// Append 追加投递记录
	Append(ctx context.Context, r *DeliveryRecord) error
	// ListRecent 按时间倒序返回最近的记录
	ListRecent(ctx context.Context, limit int) ([]*DeliveryRecord, error)
	// CountSince 统计某时间之后各目标的投递结果
	CountSince(ctx context.Context, since time.Time) ([]OutcomeCount, error)
}

// Alerter 投递失败时发出运维告警
type Alerter interface {
	DeliveryFailed(ctx context.Context, sink Sink, submissionID string, cause error)
}
