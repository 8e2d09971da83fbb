// file: internal/adapter/database/postgres/fake_test.go

package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================================================
//  测试替身: pgx.Rows 与连接池
// ============================================================================

type fakeRows struct {
	columns []string
	data    [][]any
	idx     int
	err     error
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		out[i] = pgconn.FieldDescription{Name: c}
	}
	return out
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.idx-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: 期望 %d 列, 实际 %d 列", len(row), len(dest))
	}
	for i, d := range dest {
		p, ok := d.(*string)
		if !ok {
			return errors.New("scan: 仅支持 *string")
		}
		*p = row[i].(string)
	}
	return nil
}

type fakePool struct {
	mu        sync.Mutex
	responses map[string]*fakeRows
	queryErr  map[string]error
	probeErr  error
	queries   []string
	closed    int
}

func newFakePool() *fakePool {
	return &fakePool{responses: map[string]*fakeRows{}, queryErr: map[string]error{}}
}

func (p *fakePool) Ping(context.Context) error { return p.probeErr }

func (p *fakePool) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries = append(p.queries, sql)
	if sql == "SELECT NOW()" {
		if p.probeErr != nil {
			return nil, p.probeErr
		}
		return &fakeRows{}, nil
	}
	if err, ok := p.queryErr[sql]; ok {
		return nil, err
	}
	if rows, ok := p.responses[sql]; ok {
		cp := *rows
		return &cp, nil
	}
	return &fakeRows{}, nil
}

func (p *fakePool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
}

func (p *fakePool) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// openerFor 让适配器依次拿到给定的假连接池
func openerFor(pools ...*fakePool) poolOpener {
	var mu sync.Mutex
	i := 0
	return func(context.Context, *pgxpool.Config) (pgPool, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(pools) {
			return nil, errors.New("没有更多的假连接池")
		}
		p := pools[i]
		i++
		return p, nil
	}
}
