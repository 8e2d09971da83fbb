// Package postgres file: internal/adapter/database/postgres/config.go
package postgres

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// tlsMarker 出现在连接串中即启用 TLS
const tlsMarker = "sslmode=require"

// Options 是连接池参数
type Options struct {
	MaxConns       int32         `mapstructure:"max_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

// DefaultOptions 返回默认连接池参数
func DefaultOptions() Options {
	return Options{MaxConns: 10, ConnectTimeout: 10 * time.Second, IdleTimeout: 30 * time.Second}
}

// buildConfig 把凭证转换为 pgxpool 配置，不做 I/O
func buildConfig(cred domain.ConnectionCredential, opts Options) (*pgxpool.Config, error) {
	var (
		dsn    string
		useTLS bool
	)
	d := cred.DBCredentials
	switch cred.Mode {
	case domain.ModeURL:
		if d.ConnectionString == "" {
			return nil, fmt.Errorf("%w: 缺少 connectionString", port.ErrMissingConfig)
		}
		dsn = d.ConnectionString
		useTLS = strings.Contains(dsn, tlsMarker)
	case domain.ModeParameters:
		useTLS = d.SSL
		dsn = parametersDSN(d)
	default:
		return nil, fmt.Errorf("%w: postgres 不支持模式 '%s'", port.ErrUnsupportedMode, cred.Mode)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		// pgx 的解析错误可能回显连接串，这里不向上透传细节
		return nil, fmt.Errorf("%w: 无法解析 postgres 连接配置", port.ErrInvalidCredential)
	}
	if !useTLS {
		cfg.ConnConfig.TLSConfig = nil
		cfg.ConnConfig.Fallbacks = nil
	}

	cfg.MaxConns = opts.MaxConns
	cfg.MaxConnIdleTime = opts.IdleTimeout
	cfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	return cfg, nil
}

func parametersDSN(d domain.DBCredentials) string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Database,
	}
	if d.Username != "" {
		u.User = url.UserPassword(d.Username, d.Password)
	}
	q := url.Values{}
	if d.SSL {
		q.Set("sslmode", "require")
	} else {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
