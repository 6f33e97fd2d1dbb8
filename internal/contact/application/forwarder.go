package application

import (
	"context"
	"time"

	"github.com/suedwestenergie/contact/internal/contact/domain"
	"github.com/suedwestenergie/contact/pkg/logger"
	"github.com/suedwestenergie/contact/pkg/metrics"
)

// Forwarder 将通过校验的提交依次写入 Ninox 并发送通知邮件。
// 两个目标相互独立，任一失败只记录日志，不影响另一个，也不回滚。
type Forwarder struct {
	records  domain.RecordWriter
	notifier domain.Notifier
	journal  domain.DeliveryJournal
	alerter  domain.Alerter
	metrics  *metrics.Metrics
	now      func() time.Time
}

// ForwarderOption 转发器选项
type ForwarderOption func(*Forwarder)

// WithJournal 启用投递日志
func WithJournal(j domain.DeliveryJournal) ForwarderOption {
	return func(f *Forwarder) { f.journal = j }
}

// WithAlerter 启用失败告警
func WithAlerter(a domain.Alerter) ForwarderOption {
	return func(f *Forwarder) { f.alerter = a }
}

// WithMetrics 启用指标
func WithMetrics(m *metrics.Metrics) ForwarderOption {
	return func(f *Forwarder) { f.metrics = m }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) ForwarderOption {
	return func(f *Forwarder) {
		if now != nil {
			f.now = now
		}
	}
}

// NewForwarder 创建转发器
func NewForwarder(records domain.RecordWriter, notifier domain.Notifier, opts ...ForwarderOption) *Forwarder {
	f := &Forwarder{
		records:  records,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Forward 按顺序投递到 Ninox 和邮件，返回每个目标的投递记录
func (f *Forwarder) Forward(ctx context.Context, s *domain.Submission) []*domain.DeliveryRecord {
	out := make([]*domain.DeliveryRecord, 0, 2)

	out = append(out, f.deliver(ctx, s, domain.SinkNinox, func(ctx context.Context) (string, error) {
		return f.records.CreateRecord(ctx, s)
	}))
	out = append(out, f.deliver(ctx, s, domain.SinkEmail, func(ctx context.Context) (string, error) {
		return "", f.notifier.NotifySubmission(ctx, s)
	}))

	return out
}

func (f *Forwarder) deliver(ctx context.Context, s *domain.Submission, sink domain.Sink, fn func(context.Context) (string, error)) *domain.DeliveryRecord {
	start := f.now()
	externalID, err := fn(ctx)
	elapsed := f.now().Sub(start)

	rec := &domain.DeliveryRecord{
		SubmissionID: s.ID,
		Sink:         sink,
		Outcome:      domain.OutcomeOf(err),
		ExternalID:   externalID,
		Duration:     elapsed,
		CreatedAt:    start,
	}
	if err != nil {
		rec.Error = err.Error()
	}

	switch rec.Outcome {
	case domain.OutcomeDelivered:
		logger.Info(ctx, "submission delivered", "submission_id", s.ID, "sink", sink, "external_id", externalID, "duration", elapsed)
	case domain.OutcomeSkipped:
		logger.Info(ctx, "sink not configured, skipping", "submission_id", s.ID, "sink", sink)
	default:
		logger.Error(ctx, "submission delivery failed", "submission_id", s.ID, "sink", sink, "error", err, "duration", elapsed)
		if f.alerter != nil {
			f.alerter.DeliveryFailed(ctx, sink, s.ID, err)
		}
	}

	f.metrics.RecordDelivery(string(sink), string(rec.Outcome), elapsed.Seconds())

	if f.journal != nil {
		if jerr := f.journal.Append(ctx, rec); jerr != nil {
			logger.Warn(ctx, "failed to append delivery journal", "submission_id", s.ID, "sink", sink, "error", jerr)
		}
	}
	return rec
}
