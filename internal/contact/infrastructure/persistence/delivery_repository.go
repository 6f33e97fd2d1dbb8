// Package persistence 投递日志的 GORM 实现
package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/suedwestenergie/contact/internal/contact/domain"
)

// deliveryRepository 投递日志仓储实现
type deliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository 创建投递日志仓储
func NewDeliveryRepository(db *gorm.DB) domain.DeliveryJournal {
	return &deliveryRepository{db: db}
}

// AutoMigrate 创建或更新投递日志表
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&DeliveryPO{}); err != nil {
		return fmt.Errorf("failed to migrate contact_deliveries: %w", err)
	}
	return nil
}

// Append 追加一条投递记录
func (r *deliveryRepository) Append(ctx context.Context, rec *domain.DeliveryRecord) error {
	var po DeliveryPO
	po.FromDomain(rec)
	return r.db.WithContext(ctx).Create(&po).Error
}

// ListRecent 按时间倒序返回最近的记录
func (r *deliveryRepository) ListRecent(ctx context.Context, limit int) ([]*domain.DeliveryRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var pos []DeliveryPO
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	out := make([]*domain.DeliveryRecord, 0, len(pos))
	for i := range pos {
		out = append(out, pos[i].ToDomain())
	}
	return out, nil
}

type outcomeRow struct {
	Sink    string
	Outcome string
	Count   int64
}

// CountSince 统计某时间之后各目标的投递结果
func (r *deliveryRepository) CountSince(ctx context.Context, since time.Time) ([]domain.OutcomeCount, error) {
	var rows []outcomeRow
	err := r.db.WithContext(ctx).
		Model(&DeliveryPO{}).
		Select("sink, outcome, COUNT(*) AS count").
		Where("created_at >= ?", since.UTC()).
		Group("sink, outcome").
		Order("sink, outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.OutcomeCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.OutcomeCount{
			Sink:    domain.Sink(row.Sink),
			Outcome: domain.Outcome(row.Outcome),
			Count:   row.Count,
		})
	}
	return out, nil
}
