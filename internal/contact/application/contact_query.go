package application

import (
	"context"
	"errors"
	"time"

	"github.com/suedwestenergie/contact/internal/contact/domain"
)

// ErrJournalDisabled 未配置投递日志时返回
var ErrJournalDisabled = errors.New("delivery journal disabled")

// SinkState 报告投递目标是否已配置
type SinkState interface {
	Configured() bool
}

// ContactQuery 处理只读查询（Queries）
type ContactQuery struct {
	journal domain.DeliveryJournal
	ninox   SinkState
	email   SinkState
	now     func() time.Time
}

// NewContactQuery 构造函数，journal 可为 nil
func NewContactQuery(journal domain.DeliveryJournal, ninox, email SinkState) *ContactQuery {
	return &ContactQuery{journal: journal, ninox: ninox, email: email, now: time.Now}
}

// RecentDeliveries 最近的投递记录
func (q *ContactQuery) RecentDeliveries(ctx context.Context, limit int) ([]DeliveryDTO, error) {
	if q.journal == nil {
		return nil, ErrJournalDisabled
	}
	recs, err := q.journal.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]DeliveryDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, toDeliveryDTO(r))
	}
	return out, nil
}

// Readiness 汇总各投递目标的配置状态和最近 24 小时的投递结果
func (q *ContactQuery) Readiness(ctx context.Context) (*ReadinessDTO, error) {
	dto := &ReadinessDTO{
		Ninox:   SinkStatusDTO{Configured: q.ninox != nil && q.ninox.Configured()},
		Email:   SinkStatusDTO{Configured: q.email != nil && q.email.Configured()},
		Journal: q.journal != nil,
	}
	if q.journal == nil {
		return dto, nil
	}

	counts, err := q.journal.CountSince(ctx, q.now().Add(-24*time.Hour))
	if err != nil {
		return dto, err
	}
	for _, c := range counts {
		status := &dto.Ninox
		if c.Sink == domain.SinkEmail {
			status = &dto.Email
		}
		if status.Last24h == nil {
			status.Last24h = make(map[string]int64)
		}
		status.Last24h[string(c.Outcome)] += c.Count
	}
	return dto, nil
}
