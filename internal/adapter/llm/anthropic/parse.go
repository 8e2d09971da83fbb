// Package anthropic file: internal/adapter/llm/anthropic/parse.go
package anthropic

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"encoding/json"
	"fmt"
	"strings"
)

const noExplanation = "No explanation provided"

type rawGeneration struct {
	Query       json.RawMessage `json:"query"`
	SQL         string          `json:"sql"`
	Collection  string          `json:"collection"`
	Explanation string          `json:"explanation"`
}

// ParseResponse 解析模型返回的文本。生成器的输出不可信，这里只检查形状，安全校验在执行前进行。
func ParseResponse(source domain.Source, text string) (*domain.QueryPayload, error) {
	body := stripFences(text)
	var raw rawGeneration
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: 响应不是合法 JSON", port.ErrGeneration)
	}
	explanation := strings.TrimSpace(raw.Explanation)
	if explanation == "" {
		explanation = noExplanation
	}

	switch source {
	case domain.SourcePostgres:
		sql := raw.SQL
		if len(raw.Query) > 0 {
			if err := json.Unmarshal(raw.Query, &sql); err != nil {
				return nil, fmt.Errorf("%w: SQL 查询必须是字符串", port.ErrGeneration)
			}
		}
		sql = strings.TrimSpace(sql)
		if sql == "" {
			return nil, fmt.Errorf("%w: 响应缺少 query", port.ErrGeneration)
		}
		return &domain.QueryPayload{Type: domain.QueryTypeSQL, SQL: sql, Explanation: explanation}, nil

	case domain.SourceMongo:
		if len(raw.Query) == 0 {
			return nil, fmt.Errorf("%w: 响应缺少 query", port.ErrGeneration)
		}
		var pipeline []map[string]any
		if err := json.Unmarshal(raw.Query, &pipeline); err != nil || pipeline == nil {
			return nil, fmt.Errorf("%w: 聚合管道必须是对象数组", port.ErrGeneration)
		}
		if raw.Collection == "" {
			return nil, fmt.Errorf("%w: 响应缺少集合名", port.ErrGeneration)
		}
		return &domain.QueryPayload{
			Type:        domain.QueryTypeMongo,
			Collection:  raw.Collection,
			Pipeline:    pipeline,
			Explanation: explanation,
		}, nil

	default:
		return nil, fmt.Errorf("%w: '%s'", port.ErrUnsupportedSource, source)
	}
}

// stripFences 去掉模型偶尔加上的 markdown 代码块
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
