// Package pool file: internal/adapter/database/pool/registry.go
//
// 进程级的连接池登记表。整个进程同一时刻最多只有一个活动连接，
// 这一约束由各适配器的 Connect 通过 Swap 维持，登记表本身只保证 Swap 的原子性。
package pool

import (
	"DBTalk/internal/core/port"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ConnRegistry 维护 databaseID → PoolHandle
type ConnRegistry struct {
	mu    sync.Mutex
	pools map[string]port.PoolHandle
}

var _ port.ConnectionRegistry = (*ConnRegistry)(nil)

// NewConnRegistry 创建一个空登记表
func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{pools: make(map[string]port.PoolHandle)}
}

// Set 无条件写入
func (r *ConnRegistry) Set(databaseID string, handle port.PoolHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[databaseID] = handle
}

// Get 查找 databaseID 对应的句柄
func (r *ConnRegistry) Get(databaseID string) (port.PoolHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.pools[databaseID]
	return h, ok
}

// Remove 关闭并删除 databaseID 的句柄。关闭失败只记录日志。
func (r *ConnRegistry) Remove(ctx context.Context, databaseID string) {
	r.mu.Lock()
	h, ok := r.pools[databaseID]
	delete(r.pools, databaseID)
	r.mu.Unlock()

	if !ok {
		return
	}
	if err := h.Close(ctx); err != nil {
		slog.Warn("[ConnRegistry] 关闭连接池失败", "database_id", databaseID, "error", err)
		return
	}
	slog.Info("[ConnRegistry] 连接池已关闭", "database_id", databaseID)
}

// ClearAll 并发关闭所有句柄并清空登记表。
// 单个句柄关闭失败不影响其它句柄，返回的错误仅供记录。
func (r *ConnRegistry) ClearAll(ctx context.Context) []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearLocked(ctx)
}

// Swap 在同一把锁内完成 清空全部 → 写入新句柄，保证任意时刻最多一个活动连接。
// 并发 Swap 时后到者胜出，先到者的句柄会被关闭。
func (r *ConnRegistry) Swap(ctx context.Context, databaseID string, handle port.PoolHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if errs := r.clearLocked(ctx); len(errs) > 0 {
		slog.Warn("[ConnRegistry] 替换连接时部分旧连接关闭失败", "count", len(errs))
	}
	r.pools[databaseID] = handle
}

// Active 返回唯一的活动 databaseID
func (r *ConnRegistry) Active() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.pools {
		return id, nil
	}
	return "", port.ErrNoActiveConnection
}

// Len 返回当前登记的句柄数
func (r *ConnRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}

func (r *ConnRegistry) clearLocked(ctx context.Context) []error {
	if len(r.pools) == 0 {
		return nil
	}
	old := r.pools
	r.pools = make(map[string]port.PoolHandle)

	var (
		g    errgroup.Group
		emu  sync.Mutex
		errs []error
	)
	for id, h := range old {
		id, h := id, h
		g.Go(func() error {
			if err := h.Close(ctx); err != nil {
				emu.Lock()
				errs = append(errs, fmt.Errorf("关闭连接池 '%s' 失败: %w", id, err))
				emu.Unlock()
				slog.Warn("[ConnRegistry] 关闭连接池失败", "database_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
