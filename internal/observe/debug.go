// Package observe file: internal/observe/debug.go
package observe

import (
	"log/slog"
	"net/http"
	_ "net/http/pprof" // 自动注册 pprof
)

// EnablePprof 在指定地址上暴露 /debug/pprof 端点，addr 为空时不启用
func EnablePprof(addr string) {
	if addr == "" {
		slog.Info("[Observe] pprof 未启用")
		return
	}
	go func() {
		slog.Info("[Observe] pprof 端点启动", "address", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			slog.Error("[Observe] pprof 端点启动失败", "error", err)
		}
	}()
}
