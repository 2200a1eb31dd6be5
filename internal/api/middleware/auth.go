package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-twitter/pkg/auth"
	"github.com/d60-Lab/gin-twitter/pkg/response"
)

const ContextUserIDKey = "user_id"

// Auth 校验 Bearer token，把 user_id 注入 context
func Auth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}
		claims, err := tokens.Parse(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// CurrentUserID 取 Auth 注入的 user_id，未登录返回空串
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
