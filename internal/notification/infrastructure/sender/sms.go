package sender

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/suedwestenergie/contact/internal/notification/domain"
	"github.com/suedwestenergie/contact/pkg/config"
	"github.com/suedwestenergie/contact/pkg/logger"
)

// MaxSMSLength 单条短信最大长度
const MaxSMSLength = 160

const messagesPath = "/Accounts/{sid}/Messages.json"

// SMSSender 通过 Twilio Messages API 发送告警短信
type SMSSender struct {
	cfg    config.TwilioConfig
	phones []string
	http   *resty.Client
}

// NewSMSSender 构造函数
func NewSMSSender(cfg config.TwilioConfig, phones []string) *SMSSender {
	return &SMSSender{
		cfg:    cfg,
		phones: nonEmpty(phones),
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(10*time.Second).
			SetBasicAuth(cfg.AccountSID, cfg.AuthToken),
	}
}

// Channel 实现 domain.Sender
func (s *SMSSender) Channel() domain.Channel { return domain.ChannelSMS }

// Configured 实现 domain.Sender
func (s *SMSSender) Configured() bool {
	return s.cfg.Configured() && len(s.phones) > 0
}

type messageResponse struct {
	SID string `json:"sid"`
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send 实现 domain.Sender，逐个号码发送，任一失败即返回
func (s *SMSSender) Send(ctx context.Context, a *domain.Alert) error {
	body := FormatSMS(a)

	for _, phone := range s.phones {
		var out messageResponse
		var apiErr twilioError
		resp, err := s.http.R().
			SetContext(ctx).
			SetPathParam("sid", s.cfg.AccountSID).
			SetFormData(map[string]string{
				"To":   phone,
				"From": s.cfg.FromPhone,
				"Body": body,
			}).
			SetResult(&out).
			SetError(&apiErr).
			Post(messagesPath)
		if err != nil {
			return fmt.Errorf("twilio request to %s failed: %w", phone, err)
		}
		if resp.IsError() {
			return fmt.Errorf("twilio non-2xx for %s: %d: %s", phone, resp.StatusCode(), apiErr.Message)
		}
		logger.Info(ctx, "alert sms sent", "to", phone, "sid", out.SID)
	}
	return nil
}

// FormatSMS 生成不超过 160 字符的告警短信
func FormatSMS(a *domain.Alert) string {
	code := a.Code
	if code == "" {
		code = "Error"
	}
	msg := []rune(fmt.Sprintf("[CRITICAL] SW-Energie: %s - %s", code, a.Message))
	if len(msg) > MaxSMSLength {
		msg = msg[:MaxSMSLength]
	}
	return string(msg)
}
