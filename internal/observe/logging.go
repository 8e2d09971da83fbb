// Package observe file: internal/observe/logging.go
package observe

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLevel 把配置字符串转换为日志级别，无法识别时为 INFO
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger 初始化全局的结构化日志记录器，应在 main 的早期调用。
// 返回的 LevelVar 可在配置热更新时直接修改级别。
func InitLogger(levelStr, format string) *slog.LevelVar {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(levelStr))
	slog.SetDefault(slog.New(NewHandler(os.Stdout, level, format)))
	return level
}

// NewHandler 按格式创建处理器: "text" 为终端彩色输出，其余为 JSON
func NewHandler(w io.Writer, level slog.Leveler, format string) slog.Handler {
	if strings.EqualFold(format, "text") {
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
}
