// Package database file: internal/adapter/database/registry.go
//
// 引擎类型到适配器实例的静态映射，是接入新数据库引擎的唯一扩展点。
package database

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"fmt"
	"sort"
)

// Registry 按 Source 查找适配器
type Registry struct {
	adapters map[domain.Source]port.Adapter
}

var _ port.AdapterLookup = (*Registry)(nil)

// NewRegistry 以各适配器自报的 Source 为键建立映射，后注册的同名适配器覆盖先注册的
func NewRegistry(adapters ...port.Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.Source]port.Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Source()] = a
	}
	return r
}

// Get 查找适配器，未知类型返回 port.ErrUnsupportedSource
func (r *Registry) Get(source domain.Source) (port.Adapter, error) {
	a, ok := r.adapters[source]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", port.ErrUnsupportedSource, source)
	}
	return a, nil
}

// Sources 返回已注册的引擎类型(排序)
func (r *Registry) Sources() []string {
	out := make([]string, 0, len(r.adapters))
	for s := range r.adapters {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}
