// file: internal/adapter/database/pool/registry_test.go

package pool

import (
	"DBTalk/internal/core/port"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHandle 记录 Close 调用次数
type fakeHandle struct {
	closed   atomic.Int32
	closeErr error
}

func (f *fakeHandle) Close(context.Context) error {
	f.closed.Add(1)
	return f.closeErr
}

func TestConnRegistry_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	r := NewConnRegistry()
	h := &fakeHandle{}

	r.Set("db1", h)
	got, ok := r.Get("db1")
	require.True(t, ok)
	assert.Same(t, h, got)

	r.Remove(ctx, "db1")
	_, ok = r.Get("db1")
	assert.False(t, ok)
	assert.EqualValues(t, 1, h.closed.Load())

	// 二次删除为空操作
	r.Remove(ctx, "db1")
	assert.EqualValues(t, 1, h.closed.Load())
}

func TestConnRegistry_SwapKeepsSingleHandle(t *testing.T) {
	ctx := context.Background()
	r := NewConnRegistry()
	first, second := &fakeHandle{}, &fakeHandle{}

	r.Swap(ctx, "db1", first)
	r.Swap(ctx, "db2", second)

	assert.Equal(t, 1, r.Len())
	_, ok := r.Get("db1")
	assert.False(t, ok)
	got, ok := r.Get("db2")
	require.True(t, ok)
	assert.Same(t, second, got)

	assert.EqualValues(t, 1, first.closed.Load(), "被替换的连接池必须恰好关闭一次")
	assert.EqualValues(t, 0, second.closed.Load())

	id, err := r.Active()
	require.NoError(t, err)
	assert.Equal(t, "db2", id)
}

func TestConnRegistry_ClearAllBestEffort(t *testing.T) {
	ctx := context.Background()
	r := NewConnRegistry()
	bad := &fakeHandle{closeErr: errors.New("boom")}
	good := &fakeHandle{}
	r.Set("bad", bad)
	r.Set("good", good)

	errs := r.ClearAll(ctx)
	assert.Len(t, errs, 1)
	assert.Equal(t, 0, r.Len())
	assert.EqualValues(t, 1, bad.closed.Load())
	assert.EqualValues(t, 1, good.closed.Load())

	assert.Empty(t, r.ClearAll(ctx))
}

func TestConnRegistry_ActiveEmpty(t *testing.T) {
	_, err := NewConnRegistry().Active()
	assert.ErrorIs(t, err, port.ErrNoActiveConnection)
}

func TestConnRegistry_ConcurrentSwap(t *testing.T) {
	ctx := context.Background()
	r := NewConnRegistry()

	const n = 32
	handles := make([]*fakeHandle, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		handles[i] = &fakeHandle{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Swap(ctx, string(rune('a'+i)), handles[i])
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, r.Len())
	open := 0
	for _, h := range handles {
		switch h.closed.Load() {
		case 0:
			open++
		case 1:
		default:
			t.Fatalf("连接池被关闭了 %d 次", h.closed.Load())
		}
	}
	assert.Equal(t, 1, open, "只有最后写入者保持打开")
}
