package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suedwestenergie/contact/internal/contact/application"
	"github.com/suedwestenergie/contact/pkg/logger"
)

// HealthHandler 存活与就绪检查
type HealthHandler struct {
	app     *application.ContactService
	service string
	version string
}

// NewHealthHandler 创建处理器
func NewHealthHandler(app *application.ContactService, service, version string) *HealthHandler {
	return &HealthHandler{app: app, service: service, version: version}
}

// RegisterRoutes 注册 /sys 路由
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	sys := router.Group("/sys")
	{
		sys.GET("/health", h.Health)
		sys.GET("/ready", h.Ready)
	}
}

// Health 存活检查
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"service": h.service,
		"version": h.version,
	})
}

// Ready 报告各投递目标的配置状态。目标未配置不影响就绪，只有投递日志查询失败时返回 503。
func (h *HealthHandler) Ready(c *gin.Context) {
	dto, err := h.app.Readiness(c.Request.Context())
	if err != nil {
		logger.Warn(c.Request.Context(), "readiness check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "sinks": dto, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP", "sinks": dto})
}
