// file: internal/service/chat_manager.go
package service

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"DBTalk/internal/observe"
	"DBTalk/internal/service/schema"
	"DBTalk/internal/service/validator"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// queryRunner 是 ChatManager 对数据库层的依赖
type queryRunner interface {
	CachedSchema(ctx context.Context, databaseID string) (*domain.UnifiedSchema, error)
	ExecuteQuery(ctx context.Context, databaseID string, source domain.Source, payload domain.QueryPayload) (domain.ExecutionResult, error)
}

// ChatManager 串起 结构裁剪 → 生成 → 校验 → 执行
type ChatManager struct {
	databases queryRunner
	generator port.QueryGenerator
}

var _ port.ChatService = (*ChatManager)(nil)

// NewChatManager 创建 ChatManager
func NewChatManager(databases *DatabaseManager, generator port.QueryGenerator) *ChatManager {
	return &ChatManager{databases: databases, generator: generator}
}

// Ask 针对已连接的数据库回答一个自然语言问题。
// 生成的查询未通过校验时不会执行，拒绝原因体现在执行结果里。
func (m *ChatManager) Ask(ctx context.Context, databaseID, message string) (*domain.AskResponse, error) {
	message = strings.TrimSpace(message)
	if databaseID == "" || message == "" {
		return nil, fmt.Errorf("%w: databaseId 和 message 不能为空", port.ErrInvalidRequest)
	}

	full, err := m.databases.CachedSchema(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	pruned := schema.Prune(full, message)
	slog.Debug("[ChatManager] 结构裁剪完成", "database_id", databaseID, "tables", len(full.Tables), "kept", len(pruned.Tables))

	payload, err := m.generator.Generate(ctx, port.GenerationRequest{
		Source:            full.Source,
		SchemaDescription: schema.Describe(pruned),
		Question:          message,
	})
	if err != nil {
		return nil, err
	}

	var result domain.ExecutionResult
	if v := validator.ValidatePayload(*payload); !v.Valid {
		observe.ValidationRejections.WithLabelValues(string(full.Source)).Inc()
		slog.Warn("[ChatManager] 生成的查询未通过校验", "database_id", databaseID, "error", fmt.Errorf("%w: %s", port.ErrValidationRejected, v.Reason))
		result = domain.ExecutionResult{Success: false, Error: v.Reason}
	} else {
		start := time.Now()
		result, err = m.databases.ExecuteQuery(ctx, databaseID, full.Source, *payload)
		if err != nil {
			return nil, err
		}
		observe.ObserveQuery(string(full.Source), result.Success, time.Since(start))
	}

	return &domain.AskResponse{
		Query:           payload.QueryValue(),
		Collection:      payload.Collection,
		Explanation:     payload.Explanation,
		ExecutionResult: result,
		Type:            payload.Type,
	}, nil
}
