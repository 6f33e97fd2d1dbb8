package persistence

import (
	"time"
	"unicode/utf8"

	"github.com/suedwestenergie/contact/internal/contact/domain"
)

// DeliveryPO 投递日志持久化对象，不保存表单字段内容
type DeliveryPO struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	SubmissionID string    `gorm:"column:submission_id;type:varchar(36);index;not null"`
	Sink         string    `gorm:"column:sink;type:varchar(16);not null"`
	Outcome      string    `gorm:"column:outcome;type:varchar(16);not null"`
	ExternalID   string    `gorm:"column:external_id;type:varchar(64)"`
	Error        string    `gorm:"column:error;type:varchar(512)"`
	DurationMs   int64     `gorm:"column:duration_ms;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;index;not null"`
}

func (DeliveryPO) TableName() string {
	return "contact_deliveries"
}

// ToDomain 转换为领域对象
func (po *DeliveryPO) ToDomain() *domain.DeliveryRecord {
	return &domain.DeliveryRecord{
		SubmissionID: po.SubmissionID,
		Sink:         domain.Sink(po.Sink),
		Outcome:      domain.Outcome(po.Outcome),
		ExternalID:   po.ExternalID,
		Error:        po.Error,
		Duration:     time.Duration(po.DurationMs) * time.Millisecond,
		CreatedAt:    po.CreatedAt,
	}
}

// FromDomain 从领域对象转换
func (po *DeliveryPO) FromDomain(r *domain.DeliveryRecord) {
	po.SubmissionID = r.SubmissionID
	po.Sink = string(r.Sink)
	po.Outcome = string(r.Outcome)
	po.ExternalID = r.ExternalID
	po.Error = truncate(r.Error, 512)
	po.DurationMs = r.Duration.Milliseconds()
	po.CreatedAt = r.CreatedAt.UTC()
	if r.CreatedAt.IsZero() {
		po.CreatedAt = time.Now().UTC()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// 退回到字符边界，避免截断多字节字符
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
