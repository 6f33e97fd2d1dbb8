package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/suedwestenergie/contact/pkg/config"
	"github.com/suedwestenergie/contact/pkg/logger"
	"github.com/suedwestenergie/contact/pkg/ratelimit"
)

// MsgTooManyRequests 限流时返回给用户的提示
const MsgTooManyRequests = "Zu viele Anfragen. Bitte versuchen Sie es später erneut."

// RateLimitMiddleware 按路由和客户端 IP 限流；限流器不可用时放行
func RateLimitMiddleware(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	limit := ratelimit.Limit{Rate: cfg.QPS, Period: time.Second, Burst: cfg.Burst}

	return func(c *gin.Context) {
		if !cfg.Enabled || limiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "ratelimit:" + c.FullPath() + ":" + c.ClientIP()
		res, err := limiter.Allow(ctx, key, limit)
		if err != nil {
			logger.Warn(ctx, "rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed {
			c.Next()
			return
		}

		secs := int(res.RetryAfter.Round(time.Second) / time.Second)
		c.Header("Retry-After", strconv.Itoa(max(secs, 1)))
		logger.Info(ctx, "request rate limited", "client_ip", c.ClientIP(), "path", c.FullPath())
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": MsgTooManyRequests})
	}
}
