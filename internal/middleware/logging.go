package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"taskpilot-go/pkg/log"
)

// RequestLogger 是一个 Gin 中间件，用于记录请求日志。
// 请求体可能包含密码和聊天内容，因此只记录元数据，不记录载荷。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
	}
}
