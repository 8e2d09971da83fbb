// Package domain file: internal/core/domain/auth_models.go
package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin 是唯一的角色
const RoleAdmin = "admin"

// Claims 定义 JWT 的载荷结构
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult 是登录成功后的返回
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}
