// file: internal/transport/http/router/router.go
package router

import (
	"DBTalk/internal/core/port"
	"DBTalk/internal/observe"
	"DBTalk/internal/transport/http/middleware"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Dependencies 结构体用于将所有依赖项注入到路由器中
type Dependencies struct {
	Databases   port.DatabaseService
	Chat        port.ChatService
	Auth        port.AuthService
	AskLimiter  *middleware.IPRateLimiter
	LoginLock   *middleware.LoginFailureLock
	CORSOrigins []string
}

// New 创建并配置基于 Gin 的 HTTP 路由器
func New(deps Dependencies) http.Handler {
	router := gin.New()

	// --- 配置全局中间件 ---
	router.Use(gin.Recovery())
	router.Use(observe.PrometheusMiddleware())
	router.Use(middleware.ErrorHandlingMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(observe.Handler()))

	if deps.AskLimiter == nil {
		deps.AskLimiter = middleware.NewIPRateLimiter(0, 0)
	}
	if deps.LoginLock == nil {
		deps.LoginLock = middleware.NewLoginFailureLock(5, 15*time.Minute)
	}

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", deps.LoginLock.Middleware(), loginHandler(deps.Auth))
			authGroup.GET("/me", middleware.RequireAuth(deps.Auth), meHandler())
		}

		dbGroup := v1.Group("/databases")
		dbGroup.Use(middleware.RequireAuth(deps.Auth))
		{
			dbGroup.GET("", listDatabasesHandler(deps.Databases))
			dbGroup.DELETE("", deleteDatabasesHandler(deps.Databases))
			dbGroup.POST("/test-connection", testConnectionHandler(deps.Databases))
			dbGroup.POST("/save", saveDatabaseHandler(deps.Databases))
			dbGroup.GET("/active", activeDatabaseHandler(deps.Databases))
			dbGroup.POST("/:databaseId/connect", connectDatabaseHandler(deps.Databases))
			dbGroup.POST("/:databaseId/disconnect", disconnectDatabaseHandler(deps.Databases))
		}

		chatGroup := v1.Group("/chat")
		chatGroup.Use(middleware.RequireAuth(deps.Auth))
		{
			chatGroup.POST("/ask", deps.AskLimiter.Middleware(), askHandler(deps.Chat))
		}
	}

	return router
}
