// Package ninox 提供 Ninox 数据库 REST API 客户端，用于保存联系表单记录
package ninox

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/suedwestenergie/contact/internal/contact/domain"
	"github.com/suedwestenergie/contact/pkg/breaker"
	"github.com/suedwestenergie/contact/pkg/config"
	"github.com/suedwestenergie/contact/pkg/logger"
)

const recordsPath = "/teams/{team}/databases/{database}/tables/{table}/records"

// Ninox 表中的字段名
const (
	FieldName        = "Name"
	FieldEmail       = "Email"
	FieldPhone       = "Phone"
	FieldCompany     = "Company"
	FieldMessage     = "Message"
	FieldSubmittedAt = "SubmittedAt"
)

// Record Ninox 记录
type Record struct {
	ID     int64          `json:"id"`
	Fields map[string]any `json:"fields"`
}

type createRecord struct {
	Fields map[string]any `json:"fields"`
}

// Client Ninox API 客户端
type Client struct {
	cfg     config.NinoxConfig
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient 创建 Ninox 客户端
func NewClient(cfg config.NinoxConfig, opts ...Option) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		cfg: cfg,
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(timeout).
			SetAuthToken(cfg.APIKey).
			SetHeader("Accept", "application/json").
			SetHeader("Content-Type", "application/json"),
		breaker: breaker.New("ninox", breaker.DefaultSettings),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option 客户端选项
type Option func(*Client)

// WithBreaker 替换熔断器
func WithBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) {
		if cb != nil {
			c.breaker = cb
		}
	}
}

// Configured 是否配置完整
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

// CreateRecord 实现 domain.RecordWriter，在配置的表中创建一条记录
func (c *Client) CreateRecord(ctx context.Context, s *domain.Submission) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("ninox: %w", domain.ErrNotConfigured)
	}

	ctx, span := otel.Tracer("contact/ninox").Start(ctx, "ninox.CreateRecord")
	defer span.End()
	span.SetAttributes(attribute.String("submission.id", s.ID))

	body := []createRecord{{Fields: RecordFields(s)}}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		var created []Record
		resp, err := c.http.R().
			SetContext(ctx).
			SetPathParams(c.pathParams()).
			SetBody(body).
			SetResult(&created).
			Post(recordsPath)
		if err != nil {
			return nil, fmt.Errorf("ninox request failed: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("ninox non-2xx: %d: %s", resp.StatusCode(), truncate(resp.String(), 512))
		}
		if len(created) == 0 {
			return nil, fmt.Errorf("ninox returned no record")
		}
		return created[0], nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	id := strconv.FormatInt(out.(Record).ID, 10)
	logger.Info(ctx, "ninox record created", "submission_id", s.ID, "record_id", id)
	return id, nil
}

// GetRecord 根据 ID 读取记录
func (c *Client) GetRecord(ctx context.Context, id string) (*Record, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("ninox: %w", domain.ErrNotConfigured)
	}

	params := c.pathParams()
	params["id"] = id

	var rec Record
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(params).
		SetResult(&rec).
		Get(recordsPath + "/{id}")
	if err != nil {
		return nil, fmt.Errorf("ninox request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ninox non-2xx: %d: %s", resp.StatusCode(), truncate(resp.String(), 512))
	}
	return &rec, nil
}

func (c *Client) pathParams() map[string]string {
	return map[string]string{
		"team":     c.cfg.TeamID,
		"database": c.cfg.DatabaseID,
		"table":    c.cfg.TableID,
	}
}

// RecordFields 将提交映射为 Ninox 字段
func RecordFields(s *domain.Submission) map[string]any {
	return map[string]any{
		FieldName:        s.Name,
		FieldEmail:       s.Email,
		FieldPhone:       s.Phone,
		FieldCompany:     s.Company,
		FieldMessage:     s.Message,
		FieldSubmittedAt: s.SubmittedAt.Format(time.RFC3339),
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
