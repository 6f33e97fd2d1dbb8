// Package application 运维告警的应用层
package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	contactdomain "github.com/suedwestenergie/contact/internal/contact/domain"
	"github.com/suedwestenergie/contact/internal/notification/domain"
	"github.com/suedwestenergie/contact/pkg/logger"
	"github.com/suedwestenergie/contact/pkg/metrics"
)

// 告警发送的超时时间
const sendTimeout = 30 * time.Second

// Dispatcher 按冷却规则将告警分发到各渠道。
// 发送在后台进行，调用方不等待结果。
type Dispatcher struct {
	senders  []domain.Sender
	cooldown domain.CooldownStore
	ttl      time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time

	wg sync.WaitGroup
}

// NewDispatcher 构造函数
func NewDispatcher(cooldown domain.CooldownStore, ttl time.Duration, m *metrics.Metrics, senders ...domain.Sender) *Dispatcher {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Dispatcher{
		senders:  senders,
		cooldown: cooldown,
		ttl:      ttl,
		metrics:  m,
		now:      time.Now,
	}
}

// DeliveryFailed 实现 contact 领域的 Alerter
func (d *Dispatcher) DeliveryFailed(ctx context.Context, sink contactdomain.Sink, submissionID string, cause error) {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	d.Dispatch(ctx, &domain.Alert{
		Code:    "CONTACT_" + strings.ToUpper(string(sink)) + "_FAILED",
		Title:   fmt.Sprintf("Kontaktformular: Zustellung an %s fehlgeschlagen", sink),
		Message: msg,
		Context: map[string]string{
			"submission_id": submissionID,
			"sink":          string(sink),
		},
	})
}

// Dispatch 检查冷却后在后台发送告警
func (d *Dispatcher) Dispatch(ctx context.Context, a *domain.Alert) {
	if a.OccurredAt.IsZero() {
		a.OccurredAt = d.now()
	}

	if d.cooldown != nil {
		ok, err := d.cooldown.Acquire(ctx, "alert:cooldown:"+a.Code, d.ttl)
		if err != nil {
			// 冷却存储不可用时仍然发送
			logger.Warn(ctx, "alert cooldown check failed", "code", a.Code, "error", err)
		} else if !ok {
			logger.Debug(ctx, "alert suppressed by cooldown", "code", a.Code)
			d.metrics.RecordAlert("all", "suppressed")
			return
		}
	}

	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(bg, sendTimeout)
		defer cancel()
		d.send(ctx, a)
	}()
}

func (d *Dispatcher) send(ctx context.Context, a *domain.Alert) {
	for _, s := range d.senders {
		ch := string(s.Channel())
		if !s.Configured() {
			logger.Warn(ctx, "alert channel not configured", "channel", ch, "code", a.Code)
			d.metrics.RecordAlert(ch, "skipped")
			continue
		}
		if err := s.Send(ctx, a); err != nil {
			logger.Error(ctx, "failed to send alert", "channel", ch, "code", a.Code, "error", err)
			d.metrics.RecordAlert(ch, "failed")
			continue
		}
		logger.Info(ctx, "critical alert sent", "channel", ch, "code", a.Code)
		d.metrics.RecordAlert(ch, "sent")
	}
}

// Wait 等待所有后台发送完成
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
