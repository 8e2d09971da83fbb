// Package port file: internal/core/port/database.go
package port

import (
	"DBTalk/internal/core/domain"
	"context"
)

// PoolHandle 是引擎原生连接池的可关闭句柄
type PoolHandle interface {
	Close(ctx context.Context) error
}

// Adapter 是每种数据库引擎必须实现的契约
type Adapter interface {
	// Source 返回引擎标识
	Source() domain.Source

	// BuildConnectionConfig 把凭证转换为引擎原生配置，不做任何 I/O
	BuildConnectionConfig(cred domain.ConnectionCredential) (any, error)

	// TestConnection 建立一条临时连接做存活探测，无论成败都会释放
	TestConnection(ctx context.Context, cred domain.ConnectionCredential) error

	// Connect 为 databaseID 创建并校验连接池，成为唯一的活动连接
	Connect(ctx context.Context, databaseID string, cred *domain.ConnectionCredential) (PoolHandle, error)

	// Disconnect 幂等地释放 databaseID 的连接池，不向调用方报错
	Disconnect(ctx context.Context, databaseID string)

	// IntrospectSchema 读取活动连接的结构并归一化
	IntrospectSchema(ctx context.Context, databaseID string) (*domain.UnifiedSchema, error)

	// ExecuteQuery 校验并执行只读查询；失败体现在结果里
	ExecuteQuery(ctx context.Context, payload domain.QueryPayload, handle PoolHandle) domain.ExecutionResult
}

// ConnectionRegistry 维护 databaseID → 连接池 的映射，同一时刻最多一项
type ConnectionRegistry interface {
	Get(databaseID string) (PoolHandle, bool)
	Swap(ctx context.Context, databaseID string, handle PoolHandle)
	Remove(ctx context.Context, databaseID string)
	ClearAll(ctx context.Context) []error
	Active() (string, error)
}

// AdapterLookup 按引擎类型查找适配器
type AdapterLookup interface {
	Get(source domain.Source) (Adapter, error)
}
