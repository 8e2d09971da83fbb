// file: internal/service/auth_service.go
package service

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "DBTalk"

// AuthConfig 是管理员登录配置
type AuthConfig struct {
	AdminEmail        string        `mapstructure:"admin_email"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
}

// AuthServiceImpl 使用单个配置化的管理员账号签发 JWT
type AuthServiceImpl struct {
	email    string
	hash     []byte
	hmacKey  []byte
	tokenTTL time.Duration
	now      func() time.Time
}

var _ port.AuthService = (*AuthServiceImpl)(nil)

// NewAuthService 创建认证服务
func NewAuthService(cfg AuthConfig) (*AuthServiceImpl, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("AuthService 初始化失败: jwt_secret 不能为空")
	}
	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		return nil, errors.New("AuthService 初始化失败: 未配置管理员邮箱或密码哈希")
	}
	if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
		return nil, fmt.Errorf("AuthService 初始化失败: admin_password_hash 不是合法的 bcrypt 哈希: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthServiceImpl{
		email:    strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		hash:     []byte(cfg.AdminPasswordHash),
		hmacKey:  []byte(cfg.JWTSecret),
		tokenTTL: cfg.TokenTTL,
		now:      time.Now,
	}, nil
}

// HashPassword 生成 bcrypt 哈希，用于填写配置
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("密码不能为空")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("生成密码哈希失败: %w", err)
	}
	return string(hash), nil
}

// Login 校验邮箱与密码，成功则签发令牌
func (s *AuthServiceImpl) Login(_ context.Context, email, password string) (*domain.LoginResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(normalized), []byte(s.email)) == 1
	// 邮箱不匹配时仍做一次哈希比较，避免通过耗时区分账号是否存在
	passErr := bcrypt.CompareHashAndPassword(s.hash, []byte(password))
	if !emailOK || passErr != nil {
		slog.Warn("[AuthService] 登录失败", "email", email)
		return nil, port.ErrInvalidLogin
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := domain.Claims{
		Email: s.email,
		Role:  domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.hmacKey)
	if err != nil {
		return nil, fmt.Errorf("签名 JWT 失败: %w", err)
	}
	return &domain.LoginResult{Token: signed, ExpiresAt: expiresAt, Email: s.email, Role: domain.RoleAdmin}, nil
}

// ParseToken 解析并验证 JWT 字符串
func (s *AuthServiceImpl) ParseToken(tokenString string) (*domain.Claims, error) {
	claims := &domain.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非预期的签名方法: %v", token.Header["alg"])
		}
		return s.hmacKey, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", port.ErrInvalidToken, jwt.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w (detail: %v)", port.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, port.ErrInvalidToken
	}
	return claims, nil
}
