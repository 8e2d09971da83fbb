// file: cmd/dbtalk/serve.go

package main

import (
	"DBTalk/internal/adapter/cache"
	"DBTalk/internal/adapter/catalog/sqlite"
	"DBTalk/internal/adapter/database"
	"DBTalk/internal/adapter/database/mongo"
	"DBTalk/internal/adapter/database/pool"
	"DBTalk/internal/adapter/database/postgres"
	"DBTalk/internal/adapter/llm/anthropic"
	"DBTalk/internal/config"
	"DBTalk/internal/observe"
	"DBTalk/internal/service"
	"DBTalk/internal/service/crypto"
	"DBTalk/internal/transport/http/middleware"
	"DBTalk/internal/transport/http/router"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgFile)
		},
	}
}

// watchLogLevel 在配置文件变化时热更新日志级别，其余配置需要重启生效
func watchLogLevel(v *viper.Viper, level interface{ Set(slog.Level) }) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next := observe.ParseLevel(v.GetString("server.log_level"))
		level.Set(next)
		slog.Info("[Config] 配置文件已变更，日志级别已更新", "file", e.Name, "level", next.String())
	})
	v.WatchConfig()
}

func runServe(ctx context.Context, path string) error {
	// 在日志系统初始化前使用标准 log
	log.Printf("DBTalk %s 正在启动...", version)

	cfg, v, err := config.Load(path)
	if err != nil {
		return err
	}
	level := observe.InitLogger(cfg.Server.LogLevel, cfg.Server.LogFormat)
	if v.ConfigFileUsed() != "" {
		watchLogLevel(v, level)
	}
	slog.Info("配置加载并解析成功", "path", v.ConfigFileUsed(), "version", version)

	observe.Register()
	observe.EnablePprof(cfg.Server.PprofAddr)

	if dir := filepath.Dir(cfg.Catalog.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录 '%s' 失败: %w", dir, err)
		}
	}
	store, err := sqlite.Open(ctx, cfg.Catalog.Path, cfg.Catalog.CacheEntries, cfg.Catalog.CacheTTL)
	if err != nil {
		return err
	}
	defer func() {
		slog.Info("正在关闭目录数据库...")
		if err := store.Close(); err != nil {
			slog.Error("关闭目录数据库时发生错误", "error", err)
		}
	}()

	cipher, err := crypto.NewCredentialCipher(cfg.Security.EncryptionSecret)
	if err != nil {
		return err
	}
	kv := cache.NewMemoryCache(cfg.Cache.SchemaTTL, cfg.Cache.CleanupInterval)

	pools := pool.NewConnRegistry()
	adapters := database.NewRegistry(
		postgres.New(pools, cfg.Pool.Postgres),
		mongo.New(pools, cfg.Pool.Mongo),
	)
	slog.Info("适配器层: 数据库适配器注册完成", "sources", adapters.Sources())

	databases := service.NewDatabaseManager(adapters, pools, store, kv, cipher, service.DatabaseManagerOptions{
		PendingTTL: cfg.Cache.PendingTTL,
		SchemaTTL:  cfg.Cache.SchemaTTL,
	})
	chat := service.NewChatManager(databases, anthropic.New(cfg.LLM))
	auth, err := service.NewAuthService(cfg.Auth)
	if err != nil {
		return err
	}
	slog.Info("服务层: 初始化完成")

	gin.SetMode(gin.ReleaseMode)
	handler := router.New(router.Dependencies{
		Databases:   databases,
		Chat:        chat,
		Auth:        auth,
		AskLimiter:  middleware.NewIPRateLimiter(cfg.Security.AskPerMinute, cfg.Security.AskBurst),
		LoginLock:   middleware.NewLoginFailureLock(cfg.Security.LoginMaxFailures, cfg.Security.LoginLockout),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("DBTalk 启动成功，开始监听HTTP请求...", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP服务启动失败: %w", err)
		}
	case <-quit.Done():
		slog.Info("收到停机信号，准备优雅关闭...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP服务优雅关闭失败", "error", err)
	}
	for _, err := range pools.ClearAll(shutdownCtx) {
		slog.Error("关闭数据库连接池失败", "error", err)
	}
	slog.Info("HTTP服务已成功关闭，程序即将退出。")
	return nil
}
