package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/suedwestenergie/contact/pkg/logger"
)

// MsgUnauthorized 管理接口鉴权失败的提示
const MsgUnauthorized = "unauthorized"

// AdminAuthMiddleware 校验 Authorization: Bearer <token>。
// token 为空时管理接口整体关闭，所有请求返回 401。
func AdminAuthMiddleware(token string) gin.HandlerFunc {
	want := []byte(token)

	return func(c *gin.Context) {
		got, ok := bearerToken(c.GetHeader("Authorization"))
		if token == "" || !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			logger.Warn(c.Request.Context(), "admin request rejected", "client_ip", c.ClientIP(), "path", c.FullPath())
			c.Header("WWW-Authenticate", `Bearer realm="contact"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": MsgUnauthorized})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
