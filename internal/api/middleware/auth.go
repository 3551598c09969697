package middleware

import (
	"strings"

	"Clanhub/internal/pkg/consts"
	"Clanhub/internal/pkg/redis"
	"Clanhub/internal/pkg/response"
	"Clanhub/internal/pkg/security"
	"Clanhub/internal/service"

	"github.com/gin-gonic/gin"
)

const SessionKey = "session"

// AuthMiddleware 负责验证 JWT 并将会话身份注入 Context。
// 吊销名单只在 Redis 可用时检查，本地存储模式下跳过。
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		if redis.Ready() {
			signature, err := security.ExtractSignature(tokenString)
			if err != nil {
				response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
				c.Abort()
				return
			}
			value, err := redis.GetValue(c.Request.Context(), consts.RevokedTokenKey+signature)
			if err != nil {
				response.Fail(c, response.InternalServerError, "未知错误")
				c.Abort()
				return
			}
			if value != "" {
				response.Fail(c, response.Unauthorized, "Token 无效或已过期")
				c.Abort()
				return
			}
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set(SessionKey, service.SessionContext{
			UserID:   claims.UserID,
			Username: claims.Username,
			Clan:     claims.Clan,
			Role:     claims.Role,
		})
		c.Next()
	}
}

// MustSession 取出 AuthMiddleware 注入的会话身份
func MustSession(c *gin.Context) service.SessionContext {
	v, _ := c.Get(SessionKey)
	sess, _ := v.(service.SessionContext)
	return sess
}
