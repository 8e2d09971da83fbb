// Package postgres file: internal/adapter/database/postgres/execute.go
package postgres

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"DBTalk/internal/service/validator"
	"context"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// genericExecError 对调用方展示的执行失败信息，驱动错误只写日志
const genericExecError = "执行 SQL 查询出错"

// execute 校验并执行一条只读 SQL，结果整理为扁平记录
func execute(ctx context.Context, db pgPool, sql string) domain.ExecutionResult {
	start := time.Now()
	elapsed := func() int64 { return time.Since(start).Milliseconds() }

	query := strings.TrimSpace(sql)
	query = strings.TrimSuffix(query, ";")

	if v := validator.ValidateSQL(query); !v.Valid {
		return domain.ExecutionResult{Success: false, Error: v.Reason, ExecutionTimeMs: elapsed()}
	}

	data, err := collect(ctx, db, query)
	if err != nil {
		slog.Error("[PostgresAdapter] 执行查询失败", "error", fmt.Errorf("%w: %w", port.ErrExecution, err))
		return domain.ExecutionResult{Success: false, Error: genericExecError, ExecutionTimeMs: elapsed()}
	}
	return domain.ExecutionResult{Success: true, Data: data, Count: len(data), ExecutionTimeMs: elapsed()}
}

func collect(ctx context.Context, db pgPool, query string) ([]map[string]any, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	data := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		record := make(map[string]any, len(fields))
		for i, fd := range fields {
			if i < len(values) {
				record[fd.Name] = plain(values[i])
			}
		}
		data = append(data, record)
	}
	return data, rows.Err()
}

// plain 把 pgx 解码出的值转换为可直接序列化的形式: uuid 转字符串，pgtype 值取其文本表示
func plain(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t).String()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case driver.Valuer:
		dv, err := t.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		return dv
	default:
		return v
	}
}
