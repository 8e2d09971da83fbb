// Package middleware file: internal/transport/http/middleware/limiter.go
package middleware

import (
	"DBTalk/internal/core/port"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// IPRateLimiter 为每个客户端 IP 维护一个令牌桶。
// 闲置超过 idleTTL 的条目由 go-cache 自动回收。
type IPRateLimiter struct {
	limiters *cache.Cache
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
}

// NewIPRateLimiter 创建限制器，perMinute 为每分钟允许的请求数
func NewIPRateLimiter(perMinute float64, burst int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	if burst <= 0 {
		burst = 5
	}
	idle := 15 * time.Minute
	return &IPRateLimiter{
		limiters: cache.New(idle, 10*time.Minute),
		rate:     rate.Limit(perMinute / 60.0),
		burst:    burst,
		idleTTL:  idle,
	}
}

// getLimiter 返回或创建指定IP的速率限制器，每次访问都会刷新过期时间
func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	if v, found := l.limiters.Get(ip); found {
		limiter := v.(*rate.Limiter)
		l.limiters.Set(ip, limiter, l.idleTTL)
		return limiter
	}
	limiter := rate.NewLimiter(l.rate, l.burst)
	if err := l.limiters.Add(ip, limiter, l.idleTTL); err != nil {
		// 并发创建时以先写入者为准
		if v, found := l.limiters.Get(ip); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// Middleware 超出速率时返回 429
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.getLimiter(ip).Allow() {
			slog.Warn("[RateLimiter] 请求过于频繁", "ip", ip, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
			return
		}
		c.Next()
	}
}

// LoginFailureLock 在同一 IP 连续登录失败达到上限后临时锁定
type LoginFailureLock struct {
	failureCache    *cache.Cache
	maxFailures     int
	lockoutDuration time.Duration
}

// NewLoginFailureLock 创建一个新的登录失败锁定器
func NewLoginFailureLock(maxFailures int, lockoutDuration time.Duration) *LoginFailureLock {
	return &LoginFailureLock{
		failureCache:    cache.New(5*time.Minute, 10*time.Minute),
		maxFailures:     maxFailures,
		lockoutDuration: lockoutDuration,
	}
}

// Middleware 包裹登录处理器
func (l *LoginFailureLock) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		lockKey := "lock:" + ip
		failureKey := "failures:" + ip

		if _, found := l.failureCache.Get(lockKey); found {
			slog.Warn("[LoginLock] 已锁定的来源再次尝试登录", "ip", ip)
			_ = c.Error(port.ErrInvalidLogin)
			c.Abort()
			return
		}

		c.Next()

		last := c.Errors.Last()
		if last == nil {
			l.failureCache.Delete(failureKey)
			return
		}
		if !errors.Is(last.Err, port.ErrInvalidLogin) {
			return
		}

		failures, err := l.failureCache.IncrementInt64(failureKey, 1)
		if err != nil {
			// key 不存在，即第一次失败
			l.failureCache.Set(failureKey, int64(1), cache.DefaultExpiration)
			failures = 1
		}
		slog.Info("[LoginLock] 登录失败", "ip", ip, "failures", failures)

		if failures >= int64(l.maxFailures) {
			l.failureCache.Set(lockKey, true, l.lockoutDuration)
			l.failureCache.Delete(failureKey)
			slog.Warn("[LoginLock] 来源已被临时锁定", "ip", ip, "duration", l.lockoutDuration)
		}
	}
}
