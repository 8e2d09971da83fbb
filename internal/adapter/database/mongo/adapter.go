// Package mongo file: internal/adapter/database/mongo/adapter.go
//
// MongoDB 适配器。文档库没有目录元数据，结构由样本推断。
package mongo

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// sampleConcurrency 同时采样的集合数量上限
const sampleConcurrency = 4

// Client 是登记在 ConnRegistry 中的 mongo 客户端句柄
type Client struct {
	store docStore
}

var _ port.PoolHandle = (*Client)(nil)

// Close 断开客户端
func (c *Client) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

// Adapter 实现 port.Adapter
type Adapter struct {
	pools port.ConnectionRegistry
	opts  Options
	dial  dialer
}

var _ port.Adapter = (*Adapter)(nil)

// New 创建 mongo 适配器
func New(pools port.ConnectionRegistry, opts Options) *Adapter {
	return &Adapter{pools: pools, opts: opts, dial: dialDriver}
}

// Source 实现 port.Adapter
func (a *Adapter) Source() domain.Source { return domain.SourceMongo }

// BuildConnectionConfig 返回 *ClientConfig
func (a *Adapter) BuildConnectionConfig(cred domain.ConnectionCredential) (any, error) {
	return buildConfig(cred, a.opts)
}

// TestConnection 建立临时客户端并 ping，结束后总是断开
func (a *Adapter) TestConnection(ctx context.Context, cred domain.ConnectionCredential) error {
	cfg, err := buildConfig(cred, a.opts)
	if err != nil {
		return err
	}
	store, err := a.dial(ctx, cfg)
	if err != nil {
		slog.Warn("[MongoAdapter] 创建测试客户端失败", "error", err)
		return port.ErrConnection
	}
	defer func() {
		if cerr := store.Close(ctx); cerr != nil {
			slog.Warn("[MongoAdapter] 关闭测试客户端失败", "error", cerr)
		}
	}()

	if err := store.Ping(ctx); err != nil {
		slog.Warn("[MongoAdapter] 测试连接失败", "database", cfg.Database, "error", err)
		return port.ErrConnection
	}
	return nil
}

// Connect 创建客户端并校验，随后替换掉登记表中的所有旧连接
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

	store, err := a.dial(ctx, cfg)
	if err != nil {
		slog.Error("[MongoAdapter] 创建客户端失败", "database_id", databaseID, "error", err)
		return nil, port.ErrConnection
	}
	if err := store.Ping(ctx); err != nil {
		if cerr := store.Close(ctx); cerr != nil {
			slog.Warn("[MongoAdapter] 回滚时关闭客户端失败", "database_id", databaseID, "error", cerr)
		}
		slog.Error("[MongoAdapter] 客户端校验失败", "database_id", databaseID, "error", err)
		return nil, port.ErrConnection
	}

	handle := &Client{store: store}
	a.pools.Swap(ctx, databaseID, handle)
	slog.Info("[MongoAdapter] 已连接", "database_id", databaseID, "database", cfg.Database)
	return handle, nil
}

// Disconnect 幂等地移除客户端
func (a *Adapter) Disconnect(ctx context.Context, databaseID string) {
	a.pools.Remove(ctx, databaseID)
}

// IntrospectSchema 列出集合并对每个集合采样最多 50 个文档
func (a *Adapter) IntrospectSchema(ctx context.Context, databaseID string) (*domain.UnifiedSchema, error) {
	h, ok := a.pools.Get(databaseID)
	if !ok {
		return nil, port.ErrNoActiveConnection
	}
	c, ok := h.(*Client)
	if !ok {
		return nil, fmt.Errorf("%w: 活动连接不是 mongo 客户端", port.ErrNoActiveConnection)
	}

	names, err := c.store.CollectionNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("列出集合失败: %w", err)
	}
	sort.Strings(names)

	var (
		mu      sync.Mutex
		samples = make(map[string][]bson.D, len(names))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sampleConcurrency)
	for _, name := range names {
		g.Go(func() error {
			docs, err := c.store.Sample(gctx, name, sampleSize)
			if err != nil {
				return err
			}
			mu.Lock()
			samples[name] = docs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return normalize(samples), nil
}

// ExecuteQuery 实现 port.Adapter，从不返回错误
func (a *Adapter) ExecuteQuery(ctx context.Context, payload domain.QueryPayload, handle port.PoolHandle) domain.ExecutionResult {
	c, ok := handle.(*Client)
	if !ok || c == nil {
		return domain.ExecutionResult{Success: false, Error: port.ErrNoActiveConnection.Error()}
	}
	if payload.Type != domain.QueryTypeMongo {
		return domain.ExecutionResult{Success: false, Error: "mongo 只接受聚合管道查询"}
	}
	return execute(ctx, c.store, payload.Collection, payload.Pipeline)
}
