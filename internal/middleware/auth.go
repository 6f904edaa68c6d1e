// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskpilot-go/internal/service"
	"taskpilot-go/pkg/token"
)

// ContextUserIDKey 是已认证用户身份在 gin 上下文中的键。
// 用户身份只能来自经过验证的 token，绝不接受请求载荷中的身份字段。
const ContextUserIDKey = "userID"

// AuthMiddleware 创建一个 Gin 中间件，用于 JWT 认证。
// 它会从请求头中提取 token，验证其有效性和黑名单状态，
// 并将已认证的用户 ID 存入 Gin 的上下文中。
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从 Authorization 请求头中获取 token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "请求未包含授权头",
			})
			return
		}

		// Token 以 "Bearer <token>" 的形式提供，需要提取出 token 本身
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "无效的授权头格式",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "无效或已过期的 token",
			})
			return
		}

		// 已登出的 token 在黑名单中，即使签名仍然有效也要拒绝
		if userService.IsTokenBlacklisted(c.Request.Context(), tokenString) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "token 已失效",
			})
			return
		}

		// 将已认证的用户 ID 存储在 context 中，供后续处理函数使用
		c.Set(ContextUserIDKey, claims.UserID())
		c.Set("claims", claims)

		c.Next()
	}
}

// UserID 从 gin 上下文中取出已认证的用户身份。
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
