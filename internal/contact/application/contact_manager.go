package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/suedwestenergie/contact/internal/contact/domain"
	"github.com/suedwestenergie/contact/pkg/logger"
	"github.com/suedwestenergie/contact/pkg/metrics"
)

// 提交结果标签
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
)

// ContactManager 处理联系表单提交（Commands）
type ContactManager struct {
	forwarder    *Forwarder
	metrics      *metrics.Metrics
	thankYouPath string
	newID        func() string
	now          func() time.Time
}

// NewContactManager 构造函数
func NewContactManager(forwarder *Forwarder, m *metrics.Metrics, thankYouPath string) *ContactManager {
	if thankYouPath == "" {
		thankYouPath = "/danke"
	}
	return &ContactManager{
		forwarder:    forwarder,
		metrics:      m,
		thankYouPath: thankYouPath,
		newID:        uuid.NewString,
		now:          time.Now,
	}
}

// Submit 校验并转发提交。
// 返回的错误只可能是 *domain.ValidationError；校验通过后下游失败不会返回给调用方。
func (m *ContactManager) Submit(ctx context.Context, cmd SubmitContactCommand) (*SubmitResult, error) {
	if err := domain.Validate(cmd.Name, cmd.Email, cmd.Company, cmd.Message); err != nil {
		m.metrics.RecordSubmission(ResultRejected)
		logger.Info(ctx, "contact submission rejected", "error", err)
		return nil, err
	}

	s := domain.NewSubmission(m.newID(), cmd.Name, cmd.Email, cmd.Phone, cmd.Company, cmd.Message, m.now())
	m.metrics.RecordSubmission(ResultAccepted)
	logger.Info(ctx, "contact submission accepted", "submission_id", s.ID)

	records := m.forwarder.Forward(ctx, s)

	result := &SubmitResult{
		SubmissionID: s.ID,
		Redirect:     m.thankYouPath,
		Deliveries:   make([]DeliveryDTO, 0, len(records)),
	}
	for _, r := range records {
		result.Deliveries = append(result.Deliveries, toDeliveryDTO(r))
	}
	return result, nil
}

func toDeliveryDTO(r *domain.DeliveryRecord) DeliveryDTO {
	return DeliveryDTO{
		SubmissionID: r.SubmissionID,
		Sink:         string(r.Sink),
		Outcome:      string(r.Outcome),
		ExternalID:   r.ExternalID,
		Error:        r.Error,
		Duration:     r.Duration,
		CreatedAt:    r.CreatedAt,
	}
}
