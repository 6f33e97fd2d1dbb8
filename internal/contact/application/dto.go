package application

import "time"

// SubmitContactCommand 联系表单提交命令
type SubmitContactCommand struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Message string
}

// SubmitResult 提交结果，校验通过即视为成功
type SubmitResult struct {
	SubmissionID string
	// Redirect 提交成功后的跳转地址
	Redirect string
	// Deliveries 各目标的投递结果，仅用于日志与内部接口
	Deliveries []DeliveryDTO
}

// DeliveryDTO 投递记录
type DeliveryDTO struct {
	SubmissionID string        `json:"submission_id"`
	Sink         string        `json:"sink"`
	Outcome      string        `json:"outcome"`
	ExternalID   string        `json:"external_id,omitempty"`
	Error        string        `json:"error,omitempty"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`
}

// SinkStatusDTO 单个投递目标的配置状态
type SinkStatusDTO struct {
	Configured bool             `json:"configured"`
	Last24h    map[string]int64 `json:"last_24h,omitempty"`
}

// ReadinessDTO 服务就绪状态
type ReadinessDTO struct {
	Ninox   SinkStatusDTO `json:"ninox"`
	Email   SinkStatusDTO `json:"email"`
	Journal bool          `json:"journal"`
}
