// Package http 联系表单的 HTTP 接口
package http

import (
	"errors"
	"net/http"
	"reflect"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/suedwestenergie/contact/internal/contact/application"
	"github.com/suedwestenergie/contact/internal/contact/domain"
	"github.com/suedwestenergie/contact/pkg/logger"
	"github.com/suedwestenergie/contact/pkg/response"
)

// 传输层错误提示
const (
	MsgBadRequest = "Ungültige Anfrage."
	MsgTooLong    = "Die Eingabe ist zu lang."
)

// SubmitRequest 表单请求，支持 JSON 与表单编码。
// 长度上限只防止滥用，在领域规则全部通过后才检查。
type SubmitRequest struct {
	Name    string `json:"name" form:"name" validate:"max=200"`
	Email   string `json:"email" form:"email" validate:"max=254"`
	Phone   string `json:"phone" form:"phone" validate:"max=50"`
	Company string `json:"company" form:"company" validate:"max=200"`
	Message string `json:"message" form:"message" validate:"max=5000"`
}

var lengthValidator = newLengthValidator()

func newLengthValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// ContactHandler 联系表单 HTTP 处理器
type ContactHandler struct {
	app *application.ContactService
}

// NewContactHandler 创建处理器
func NewContactHandler(app *application.ContactService) *ContactHandler {
	return &ContactHandler{app: app}
}

// RegisterRoutes 注册路由。
// submit 只作用于提交接口（例如限流），admin 只作用于投递记录接口（例如鉴权）。
func (h *ContactHandler) RegisterRoutes(router gin.IRouter, submit, admin gin.HandlersChain) {
	api := router.Group("/api/v1/contact")
	{
		api.POST("", slices.Concat(submit, gin.HandlersChain{h.Submit})...)
		api.GET("/rules", h.Rules)
		api.GET("/deliveries", slices.Concat(admin, gin.HandlersChain{h.Deliveries})...)
	}
}

// Submit 提交联系表单。
// 表单编码的请求以 303 跳转到感谢页，JSON 请求返回跳转地址。
func (h *ContactHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Warn(ctx, "malformed contact request", "error", err)
		response.ErrorWithStatus(c, http.StatusBadRequest, MsgBadRequest, "")
		return
	}

	// 领域规则的提示优先，全部通过后才检查长度上限
	if domain.Validate(req.Name, req.Email, req.Company, req.Message) == nil {
		if err := lengthValidator.Struct(&req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				response.ErrorWithStatus(c, http.StatusUnprocessableEntity, MsgTooLong, verrs[0].Field())
				return
			}
			logger.Error(ctx, "length validation failed", "error", err)
			response.ErrorWithStatus(c, http.StatusBadRequest, MsgBadRequest, "")
			return
		}
	}

	res, err := h.app.Submit(ctx, application.SubmitContactCommand{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Message: req.Message,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			response.ErrorWithStatus(c, http.StatusUnprocessableEntity, verr.Message, verr.Field)
			return
		}
		logger.Error(ctx, "contact submission failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "Interner Serverfehler", "")
		return
	}

	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		c.Redirect(http.StatusSeeOther, res.Redirect)
	default:
		response.Success(c, gin.H{
			"status":        "ok",
			"redirect":      res.Redirect,
			"submission_id": res.SubmissionID,
		})
	}
}

type ruleDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Rules 按优先级返回校验规则，供前端使用相同的提示
func (h *ContactHandler) Rules(c *gin.Context) {
	out := make([]ruleDTO, 0, len(domain.Rules))
	for _, r := range domain.Rules {
		out = append(out, ruleDTO{Field: r.Field, Message: r.Message})
	}
	response.Success(c, gin.H{
		"rules":              out,
		"min_message_length": domain.MinMessageLength,
	})
}

// Deliveries 最近的投递记录
func (h *ContactHandler) Deliveries(c *gin.Context) {
	var q struct {
		Limit int `form:"limit,default=20" binding:"min=1,max=200"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid limit", "")
		return
	}

	out, err := h.app.RecentDeliveries(c.Request.Context(), q.Limit)
	if errors.Is(err, application.ErrJournalDisabled) {
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
		return
	}
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list deliveries", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"deliveries": out})
}
