// Package middleware file: internal/transport/http/middleware/auth.go
package middleware

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "dbtalk.claims"

// RequireAuth 校验 Bearer 令牌，并把载荷放入上下文
func RequireAuth(auth port.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if !strings.HasPrefix(header, "Bearer ") || token == "" {
			_ = c.Error(port.ErrInvalidToken)
			c.Abort()
			return
		}
		claims, err := auth.ParseToken(token)
		if err != nil {
			slog.Info("[Auth] 令牌校验失败", "path", c.FullPath(), "ip", c.ClientIP(), "error", err)
			_ = c.Error(err)
			c.Abort()
			return
		}
		if claims.Role != domain.RoleAdmin {
			_ = c.Error(port.ErrPermissionDenied)
			c.Abort()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom 取出 RequireAuth 写入的载荷
func ClaimsFrom(c *gin.Context) *domain.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*domain.Claims)
	return claims
}
