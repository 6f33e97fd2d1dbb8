// Package mailer 通过 SMTP 发送联系表单通知和告警邮件
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/mail.v2"

	"github.com/suedwestenergie/contact/internal/contact/domain"
	"github.com/suedwestenergie/contact/pkg/breaker"
	"github.com/suedwestenergie/contact/pkg/config"
	"github.com/suedwestenergie/contact/pkg/logger"
)

// 邮件正文类型
const (
	ContentTypeText = "text/plain"
	ContentTypeHTML = "text/html"
)

// SendFunc 实际投递邮件的函数
type SendFunc func(msgs ...*mail.Message) error

// Mailer SMTP 邮件发送器
type Mailer struct {
	smtp    config.SMTPConfig
	contact config.ContactConfig
	send    SendFunc
	breaker *gobreaker.CircuitBreaker
}

// Option 发送器选项
type Option func(*Mailer)

// WithSendFunc 替换投递函数
func WithSendFunc(fn SendFunc) Option {
	return func(m *Mailer) {
		if fn != nil {
			m.send = fn
		}
	}
}

// WithBreaker 替换熔断器
func WithBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(m *Mailer) {
		if cb != nil {
			m.breaker = cb
		}
	}
}

// New 创建发送器，连接强制使用 STARTTLS
func New(smtpCfg config.SMTPConfig, contactCfg config.ContactConfig, opts ...Option) *Mailer {
	m := &Mailer{
		smtp:    smtpCfg,
		contact: contactCfg,
		breaker: breaker.New("smtp", breaker.DefaultSettings),
	}
	m.send = m.dialAndSend
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mailer) dialAndSend(msgs ...*mail.Message) error {
	d := mail.NewDialer(m.smtp.Host, m.smtp.Port, m.smtp.Username, m.smtp.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	if m.smtp.Timeout > 0 {
		d.Timeout = time.Duration(m.smtp.Timeout) * time.Second
	}
	return d.DialAndSend(msgs...)
}

// Configured 是否配置完整
func (m *Mailer) Configured() bool {
	return m.smtp.Configured()
}

// NotifySubmission 实现 domain.Notifier，将提交内容发送到联系邮箱
func (m *Mailer) NotifySubmission(ctx context.Context, s *domain.Submission) error {
	if !m.Configured() {
		return fmt.Errorf("smtp: %w", domain.ErrNotConfigured)
	}

	ctx, span := otel.Tracer("contact/mailer").Start(ctx, "smtp.NotifySubmission")
	defer span.End()
	span.SetAttributes(attribute.String("submission.id", s.ID))

	if err := m.deliver(m.SubmissionMessage(s)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	logger.Info(ctx, "contact email sent", "submission_id", s.ID, "recipient", m.contact.Recipient)
	return nil
}

// Send 向多个收件人分别发送同一封邮件，任一失败即返回
func (m *Mailer) Send(ctx context.Context, to []string, subject, contentType, body string) error {
	if !m.Configured() {
		return fmt.Errorf("smtp: %w", domain.ErrNotConfigured)
	}

	ctx, span := otel.Tracer("contact/mailer").Start(ctx, "smtp.Send")
	defer span.End()

	sent := 0
	for _, rcpt := range to {
		rcpt = strings.TrimSpace(rcpt)
		if rcpt == "" {
			continue
		}
		msg := m.newMessage(rcpt, subject)
		msg.SetBody(contentType, body)
		if err := m.deliver(msg); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("send to %s: %w", rcpt, err)
		}
		sent++
	}
	if sent == 0 {
		return fmt.Errorf("smtp: no recipients: %w", domain.ErrNotConfigured)
	}

	logger.Debug(ctx, "email sent", "recipients", sent, "subject", subject)
	return nil
}

func (m *Mailer) deliver(msg *mail.Message) error {
	_, err := m.breaker.Execute(func() (interface{}, error) {
		if err := m.send(msg); err != nil {
			return nil, fmt.Errorf("smtp send failed: %w", err)
		}
		return nil, nil
	})
	return err
}

// SubmissionMessage 构造提交通知邮件
func (m *Mailer) SubmissionMessage(s *domain.Submission) *mail.Message {
	msg := m.newMessage(m.contact.Recipient, Subject(s))
	msg.SetBody(ContentTypeText, SubmissionBody(s, m.contact.CompanyName))
	return msg
}

func (m *Mailer) newMessage(to, subject string) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.smtp.Sender())
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	return msg
}

var headerSanitizer = strings.NewReplacer("\r", " ", "\n", " ")

// Subject 通知邮件主题
func Subject(s *domain.Submission) string {
	return headerSanitizer.Replace(fmt.Sprintf("Neue Kontaktanfrage von %s (%s)", s.Name, s.Company))
}

// SubmissionBody 通知邮件正文
func SubmissionBody(s *domain.Submission, companyName string) string {
	var b strings.Builder
	b.WriteString("Neue Kontaktanfrage erhalten:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", s.Name)
	fmt.Fprintf(&b, "E-Mail: %s\n", s.Email)
	fmt.Fprintf(&b, "Telefon: %s\n", s.Phone)
	fmt.Fprintf(&b, "Unternehmen: %s\n", s.Company)
	fmt.Fprintf(&b, "Nachricht: %s\n\n", s.Message)
	fmt.Fprintf(&b, "Diese Nachricht wurde über das Kontaktformular der %s Website gesendet.\n", companyName)
	return b.String()
}
