// file: internal/transport/http/router/handlers.go
package router

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"DBTalk/internal/transport/http/middleware"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// badRequest 把绑定错误包装为 ErrInvalidRequest，校验错误仍可被 errors.As 识别
func badRequest(c *gin.Context, err error) {
	_ = c.Error(fmt.Errorf("%w: %w", port.ErrInvalidRequest, err))
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// =============================================================================
//  认证
// =============================================================================

func loginHandler(auth port.AuthService) gin.HandlerFunc {
	type RequestBody struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	return func(c *gin.Context) {
		var req RequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		res, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, http.StatusOK, res)
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.ClaimsFrom(c)
		ok(c, http.StatusOK, gin.H{"email": claims.Email, "role": claims.Role})
	}
}

// =============================================================================
//  数据库管理
// =============================================================================

func testConnectionHandler(dbs port.DatabaseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cred domain.ConnectionCredential
		if err := c.ShouldBindJSON(&cred); err != nil {
			badRequest(c, err)
			return
		}
		id, err := dbs.TestConnection(c.Request.Context(), cred)
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, http.StatusOK, gin.H{"databaseId": id})
	}
}

func saveDatabaseHandler(dbs port.DatabaseService) gin.HandlerFunc {
	type RequestBody struct {
		DatabaseID string `json:"databaseId" binding:"required"`
		DBName     string `json:"dbName"`
	}
	return func(c *gin.Context) {
		var req RequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		summary, err := dbs.SaveDatabase(c.Request.Context(), req.DatabaseID, req.DBName)
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, http.StatusCreated, summary)
	}
}

func connectDatabaseHandler(dbs port.DatabaseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := dbs.ConnectDatabase(c.Request.Context(), c.Param("databaseId"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, http.StatusOK, res)
	}
}

func disconnectDatabaseHandler(dbs port.DatabaseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("databaseId")
		if err := dbs.DisconnectDatabase(c.Request.Context(), id); err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, http.StatusOK, gin.H{"databaseId": id, "disconnected": true})
	}
}

func listDatabasesHandler(dbs port.DatabaseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := dbs.ListDatabases(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, http.StatusOK, list)
	}
}

func deleteDatabasesHandler(dbs port.DatabaseService) gin.HandlerFunc {
	type RequestBody struct {
		IDs []string `json:"ids" binding:"required,min=1,dive,required"`
	}
	return func(c *gin.Context) {
		var req RequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		n, err := dbs.DeleteDatabases(c.Request.Context(), req.IDs)
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, http.StatusOK, gin.H{"deleted": n})
	}
}

func activeDatabaseHandler(dbs port.DatabaseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := dbs.GetActiveDatabase(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, http.StatusOK, summary)
	}
}

// =============================================================================
//  对话
// =============================================================================

func askHandler(chat port.ChatService) gin.HandlerFunc {
	type RequestBody struct {
		DatabaseID string `json:"databaseId" binding:"required"`
		Message    string `json:"message" binding:"required"`
	}
	return func(c *gin.Context) {
		var req RequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		resp, err := chat.Ask(c.Request.Context(), req.DatabaseID, req.Message)
		if err != nil {
			_ = c.Error(err)
			return
		}
		ok(c, http.StatusOK, resp)
	}
}
