// Package domain file: internal/core/domain/query_models.go
package domain

// ValidationResult 是查询校验的结论
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// QueryType 标识生成查询的语言
type QueryType string

const (
	QueryTypeSQL   QueryType = "sql"
	QueryTypeMongo QueryType = "mongo"
)

// QueryPayload 是一条待执行的只读查询。
// QueryTypeSQL 使用 SQL；QueryTypeMongo 使用 Collection 与 Pipeline。
type QueryPayload struct {
	Type        QueryType        `json:"type"`
	SQL         string           `json:"sql,omitempty"`
	Collection  string           `json:"collection,omitempty"`
	Pipeline    []map[string]any `json:"pipeline,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
}

// QueryValue 返回对外展示的查询本体: SQL 字符串或聚合管道数组
func (p QueryPayload) QueryValue() any {
	if p.Type == QueryTypeMongo {
		return p.Pipeline
	}
	return p.SQL
}

// ExecutionResult 是一次执行的结果。执行层从不抛错，失败以 Success=false 表达。
type ExecutionResult struct {
	Success         bool             `json:"success"`
	Data            []map[string]any `json:"data,omitempty"`
	Count           int              `json:"count"`
	Error           string           `json:"error,omitempty"`
	ExecutionTimeMs int64            `json:"executionTimeMs"`
}

// AskResponse 是一次自然语言提问的完整应答
type AskResponse struct {
	Query           any             `json:"query"`
	Collection      string          `json:"collection,omitempty"`
	Explanation     string          `json:"explanation"`
	ExecutionResult ExecutionResult `json:"executionResult"`
	Type            QueryType       `json:"type"`
}
