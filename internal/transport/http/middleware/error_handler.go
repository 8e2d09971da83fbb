// Package middleware file: internal/transport/http/middleware/error_handler.go
package middleware

import (
	"DBTalk/internal/core/port"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorHandlingMiddleware 是一个Gin中间件，用于集中处理错误。
// 处理器只需 c.Error(err)，状态码与 {"error": ...} 响应体统一在这里决定。
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// 只处理最后一个错误，它通常是根本原因
		err := c.Errors.Last().Err

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数验证失败", "details": ve.Error()})
			return
		}

		status, msg := Classify(err)
		if status >= http.StatusInternalServerError {
			slog.Error("[HTTP] 请求处理失败", "path", c.FullPath(), "status", status, "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
	}
}

// Classify 把业务错误映射为 HTTP 状态码与可以展示给调用方的消息。
// 驱动与上游错误只返回哨兵错误本身的文案。
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, port.ErrInvalidCredential),
		errors.Is(err, port.ErrInvalidRequest),
		errors.Is(err, port.ErrUnsupportedSource),
		errors.Is(err, port.ErrUnsupportedMode),
		errors.Is(err, port.ErrMissingConfig):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, port.ErrInvalidLogin):
		return http.StatusUnauthorized, port.ErrInvalidLogin.Error()
	case errors.Is(err, port.ErrInvalidToken):
		return http.StatusUnauthorized, port.ErrInvalidToken.Error()

	case errors.Is(err, port.ErrPermissionDenied):
		return http.StatusForbidden, "权限不足"

	case errors.Is(err, port.ErrDatabaseNotFound), errors.Is(err, port.ErrPendingNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, port.ErrDuplicateDatabase),
		errors.Is(err, port.ErrAlreadyConnected),
		errors.Is(err, port.ErrNoActiveConnection),
		errors.Is(err, port.ErrSchemaNotCached):
		return http.StatusConflict, err.Error()

	case errors.Is(err, port.ErrValidationRejected):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, port.ErrConnection):
		return http.StatusServiceUnavailable, port.ErrConnection.Error()
	case errors.Is(err, port.ErrGeneration):
		return http.StatusBadGateway, port.ErrGeneration.Error()
	case errors.Is(err, port.ErrExecution):
		return http.StatusBadGateway, port.ErrExecution.Error()
	case errors.Is(err, port.ErrDecryption):
		return http.StatusInternalServerError, port.ErrDecryption.Error()

	default:
		return http.StatusInternalServerError, "服务器内部错误"
	}
}
