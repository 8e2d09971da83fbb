// Package postgres file: internal/adapter/database/postgres/adapter.go
//
// PostgreSQL 适配器: 连接池生命周期、目录读取与只读查询执行。
package postgres

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgPool 是适配器用到的 *pgxpool.Pool 方法子集
type pgPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

type poolOpener func(ctx context.Context, cfg *pgxpool.Config) (pgPool, error)

func openPgxPool(ctx context.Context, cfg *pgxpool.Config) (pgPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Pool 是登记在 ConnRegistry 中的 postgres 连接池句柄
type Pool struct {
	db pgPool
}

var _ port.PoolHandle = (*Pool)(nil)

// Close 关闭连接池，pgxpool 的关闭不会失败
func (p *Pool) Close(context.Context) error {
	p.db.Close()
	return nil
}

// Adapter 实现 port.Adapter
type Adapter struct {
	pools port.ConnectionRegistry
	opts  Options
	open  poolOpener
}

var _ port.Adapter = (*Adapter)(nil)

// New 创建 postgres 适配器，连接池登记在 pools 中
func New(pools port.ConnectionRegistry, opts Options) *Adapter {
	return &Adapter{pools: pools, opts: opts, open: openPgxPool}
}

// Source 实现 port.Adapter
func (a *Adapter) Source() domain.Source { return domain.SourcePostgres }

// BuildConnectionConfig 返回 *pgxpool.Config
func (a *Adapter) BuildConnectionConfig(cred domain.ConnectionCredential) (any, error) {
	return buildConfig(cred, a.opts)
}

// TestConnection 以单连接池执行一次 SELECT NOW()，无论结果如何都会关闭
func (a *Adapter) TestConnection(ctx context.Context, cred domain.ConnectionCredential) error {
	cfg, err := buildConfig(cred, a.opts)
	if err != nil {
		return err
	}
	cfg.MaxConns = 1

	db, err := a.open(ctx, cfg)
	if err != nil {
		slog.Warn("[PostgresAdapter] 创建测试连接失败", "error", err)
		return port.ErrConnection
	}
	defer db.Close()

	if err := probe(ctx, db); err != nil {
		slog.Warn("[PostgresAdapter] 测试连接失败", "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database, "error", err)
		return port.ErrConnection
	}
	return nil
}

// Connect 创建并校验连接池，随后替换掉登记表中的所有旧连接
func (a *Adapter) Connect(ctx context.Context, databaseID string, cred *domain.ConnectionCredential) (port.PoolHandle, error) {
	if _, exists := a.pools.Get(databaseID); exists {
		return nil, fmt.Errorf("%w: '%s'", port.ErrAlreadyConnected, databaseID)
	}
	if cred == nil {
		return nil, port.ErrMissingConfig
	}
	cfg, err := buildConfig(*cred, a.opts)
	if err != nil {
		return nil, err
	}

	db, err := a.open(ctx, cfg)
	if err != nil {
		slog.Error("[PostgresAdapter] 创建连接池失败", "database_id", databaseID, "error", err)
		return nil, port.ErrConnection
	}
	if err := probe(ctx, db); err != nil {
		db.Close()
		slog.Error("[PostgresAdapter] 连接池校验失败", "database_id", databaseID, "error", err)
		return nil, port.ErrConnection
	}

	handle := &Pool{db: db}
	a.pools.Swap(ctx, databaseID, handle)
	slog.Info("[PostgresAdapter] 已连接", "database_id", databaseID, "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database)
	return handle, nil
}

// Disconnect 幂等地移除连接池
func (a *Adapter) Disconnect(ctx context.Context, databaseID string) {
	a.pools.Remove(ctx, databaseID)
}

// IntrospectSchema 读取 public 模式下的基础表结构
func (a *Adapter) IntrospectSchema(ctx context.Context, databaseID string) (*domain.UnifiedSchema, error) {
	h, ok := a.pools.Get(databaseID)
	if !ok {
		return nil, port.ErrNoActiveConnection
	}
	p, ok := h.(*Pool)
	if !ok {
		return nil, fmt.Errorf("%w: 活动连接不是 postgres 连接池", port.ErrNoActiveConnection)
	}
	raw, err := readCatalog(ctx, p.db)
	if err != nil {
		return nil, err
	}
	return normalize(raw), nil
}

// ExecuteQuery 实现 port.Adapter，从不返回错误
func (a *Adapter) ExecuteQuery(ctx context.Context, payload domain.QueryPayload, handle port.PoolHandle) domain.ExecutionResult {
	p, ok := handle.(*Pool)
	if !ok || p == nil {
		return domain.ExecutionResult{Success: false, Error: port.ErrNoActiveConnection.Error()}
	}
	if payload.Type != domain.QueryTypeSQL {
		return domain.ExecutionResult{Success: false, Error: "postgres 只接受 SQL 查询"}
	}
	return execute(ctx, p.db, payload.SQL)
}

func probe(ctx context.Context, db pgPool) error {
	rows, err := db.Query(ctx, "SELECT NOW()")
	if err != nil {
		return err
	}
	rows.Close()
	return rows.Err()
}
