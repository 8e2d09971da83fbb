// Package cache file: internal/adapter/cache/memory.go
//
// 进程内的 TTL 键值缓存，承担结构缓存与待保存凭证缓存。
package cache

import (
	"DBTalk/internal/core/port"
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache 是 port.KVCache 基于 go-cache 的实现
type MemoryCache struct {
	c *gocache.Cache
}

var _ port.KVCache = (*MemoryCache)(nil)

// NewMemoryCache 创建缓存。cleanupInterval 为过期条目的清理周期。
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

// Set 写入一份 value 的拷贝。ttl<=0 时使用默认过期时间。
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	m.c.Set(key, buf, ttl)
	return nil
}

// Get 读取 key，未命中或已过期时 ok 为 false
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

// Del 删除 key，不存在时无操作
func (m *MemoryCache) Del(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Len 返回当前条目数(可能包含尚未清理的过期条目)
func (m *MemoryCache) Len() int {
	return m.c.ItemCount()
}
