// Package mongo file: internal/adapter/database/mongo/execute.go
package mongo

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"DBTalk/internal/service/validator"
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const genericExecError = "执行聚合查询出错"

func execute(ctx context.Context, store docStore, collection string, pipeline []map[string]any) domain.ExecutionResult {
	start := time.Now()
	elapsed := func() int64 { return time.Since(start).Milliseconds() }

	if collection == "" {
		return domain.ExecutionResult{Success: false, Error: "缺少集合名", ExecutionTimeMs: elapsed()}
	}
	if pipeline == nil {
		return domain.ExecutionResult{Success: false, Error: "聚合管道必须是数组", ExecutionTimeMs: elapsed()}
	}
	if v := validator.ValidatePipeline(pipeline); !v.Valid {
		return domain.ExecutionResult{Success: false, Error: v.Reason, ExecutionTimeMs: elapsed()}
	}

	stages := make([]bson.M, len(pipeline))
	for i, stage := range pipeline {
		stages[i] = toBSON(stage).(bson.M)
	}

	docs, err := store.Aggregate(ctx, collection, stages)
	if err != nil {
		slog.Error("[MongoAdapter] 执行聚合失败", "collection", collection, "error", fmt.Errorf("%w: %w", port.ErrExecution, err))
		return domain.ExecutionResult{Success: false, Error: genericExecError, ExecutionTimeMs: elapsed()}
	}

	data := make([]map[string]any, len(docs))
	for i, doc := range docs {
		data[i] = flatten(doc)
	}
	return domain.ExecutionResult{Success: true, Data: data, Count: len(data), ExecutionTimeMs: elapsed()}
}

// toBSON 把 JSON 解码出的管道转换为驱动类型；整数值的 float64 转为 int64，
// 方便 $limit、$skip 这类只接受整数的阶段。
func toBSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(bson.M, len(t))
		for k, val := range t {
			out[k] = toBSON(val)
		}
		return out
	case []any:
		out := make(bson.A, len(t))
		for i, val := range t {
			out[i] = toBSON(val)
		}
		return out
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	default:
		return v
	}
}

// flatten 把驱动返回的文档转换为可直接 JSON 序列化的记录
func flatten(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Decimal128:
		return t.String()
	case primitive.M:
		return flatten(t)
	case primitive.D:
		return flatten(t.Map())
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}
