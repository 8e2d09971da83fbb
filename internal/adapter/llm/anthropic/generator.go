// Package anthropic file: internal/adapter/llm/anthropic/generator.go
package anthropic

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// completer 抽象一次文本补全，便于替换为测试替身
type completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator 用 Claude 把问题转换为查询，实现 port.QueryGenerator
type Generator struct {
	llm completer
}

var _ port.QueryGenerator = (*Generator)(nil)

// Config 是生成器参数
type Config struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// New 创建生成器。APIKey 为空时 SDK 会读取 ANTHROPIC_API_KEY 环境变量。
func New(cfg Config) *Generator {
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &Generator{llm: &messagesClient{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
	}}
}

// Generate 实现 port.QueryGenerator
func (g *Generator) Generate(ctx context.Context, req port.GenerationRequest) (*domain.QueryPayload, error) {
	sys, err := systemPrompt(req.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", port.ErrUnsupportedSource, err)
	}
	text, err := g.llm.Complete(ctx, sys, userPrompt(req.Source, req.SchemaDescription, req.Question))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", port.ErrGeneration, err)
	}
	payload, err := ParseResponse(req.Source, text)
	if err != nil {
		slog.Warn("[QueryGenerator] 模型响应无法解析", "source", req.Source, "error", err)
		return nil, err
	}
	return payload, nil
}

type messagesClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func (c *messagesClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		slog.Error("[QueryGenerator] Anthropic API 调用失败", "duration", time.Since(start), "error", err)
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	slog.Debug("[QueryGenerator] Anthropic API 调用完成", "duration", time.Since(start), "stop_reason", msg.StopReason)

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("响应中没有文本内容")
}
