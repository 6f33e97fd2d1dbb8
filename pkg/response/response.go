// Package response 统一的 JSON 响应写法
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success 200 返回数据
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// ErrorWithStatus 返回 {"error": msg}，field 非空时附带 {"field": field}
func ErrorWithStatus(c *gin.Context, status int, msg, field string) {
	body := gin.H{"error": msg}
	if field != "" {
		body["field"] = field
	}
	c.AbortWithStatusJSON(status, body)
}
