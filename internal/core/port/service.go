// Package port file: internal/core/port/service.go
package port

import (
	"DBTalk/internal/core/domain"
	"context"
	"time"
)

// KVCache 是结构缓存与待保存凭证的键值存储
type KVCache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Del(ctx context.Context, key string) error
}

// CatalogStore 持久化已保存的连接记录
type CatalogStore interface {
	Insert(ctx context.Context, rec domain.DatabaseRecord) error
	Get(ctx context.Context, id string) (*domain.DatabaseRecord, error)
	ExistsByName(ctx context.Context, source domain.Source, dbName string) (bool, error)
	List(ctx context.Context) ([]domain.DatabaseRecord, error)
	Delete(ctx context.Context, ids []string) ([]domain.DatabaseRecord, error)
}

// CredentialCipher 对凭证做认证加密
type CredentialCipher interface {
	Encrypt(v any) (string, error)
	Decrypt(payload string, out any) error
}

// GenerationRequest 是发给查询生成器的上下文
type GenerationRequest struct {
	Source            domain.Source
	SchemaDescription string
	Question          string
}

// QueryGenerator 把自然语言问题转换为一条查询
type QueryGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (*domain.QueryPayload, error)
}

// DatabaseService 管理已保存的连接及唯一的活动连接
type DatabaseService interface {
	TestConnection(ctx context.Context, cred domain.ConnectionCredential) (string, error)
	SaveDatabase(ctx context.Context, pendingID, dbName string) (*domain.DatabaseSummary, error)
	ConnectDatabase(ctx context.Context, databaseID string) (*domain.ConnectResult, error)
	ListDatabases(ctx context.Context) ([]domain.DatabaseSummary, error)
	DeleteDatabases(ctx context.Context, ids []string) (int, error)
	GetActiveDatabase(ctx context.Context) (*domain.DatabaseSummary, error)
	DisconnectDatabase(ctx context.Context, databaseID string) error
}

// ChatService 回答针对活动数据库的自然语言问题
type ChatService interface {
	Ask(ctx context.Context, databaseID, message string) (*domain.AskResponse, error)
}

// AuthService 负责管理员登录与令牌校验
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
	ParseToken(token string) (*domain.Claims, error)
}
