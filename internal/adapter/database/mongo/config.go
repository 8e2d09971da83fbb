// Package mongo file: internal/adapter/database/mongo/config.go
package mongo

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	// tlsMarker 出现在连接串中即视为启用 TLS
	tlsMarker = "tls=true"
	// defaultDatabase 连接串未指明库名时使用的库
	defaultDatabase = "test"
)

// Options 是客户端连接池参数
type Options struct {
	MaxPoolSize            uint64        `mapstructure:"max_conns"`
	IdleTimeout            time.Duration `mapstructure:"idle_timeout"`
	ServerSelectionTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DefaultOptions 返回默认参数
func DefaultOptions() Options {
	return Options{MaxPoolSize: 10, IdleTimeout: 30 * time.Second, ServerSelectionTimeout: 10 * time.Second}
}

// ClientConfig 是 mongo 引擎的原生连接配置
type ClientConfig struct {
	URI      string
	Database string
	TLS      bool
	Client   *options.ClientOptions
}

func buildConfig(cred domain.ConnectionCredential, opts Options) (*ClientConfig, error) {
	d := cred.DBCredentials
	cfg := &ClientConfig{}
	switch cred.Mode {
	case domain.ModeURL:
		if d.ConnectionString == "" {
			return nil, fmt.Errorf("%w: 缺少 connectionString", port.ErrMissingConfig)
		}
		cs, err := connstring.ParseAndValidate(d.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("%w: 无法解析 mongo 连接串", port.ErrInvalidCredential)
		}
		cfg.URI = d.ConnectionString
		cfg.Database = cs.Database
		cfg.TLS = strings.Contains(d.ConnectionString, tlsMarker)
	case domain.ModeParameters:
		cfg.URI = parametersURI(d)
		cfg.Database = d.Database
		cfg.TLS = d.SSL
	default:
		return nil, fmt.Errorf("%w: mongo 不支持模式 '%s'", port.ErrUnsupportedMode, cred.Mode)
	}
	if cfg.Database == "" {
		cfg.Database = defaultDatabase
	}

	cfg.Client = options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetMinPoolSize(0).
		SetMaxConnIdleTime(opts.IdleTimeout).
		SetServerSelectionTimeout(opts.ServerSelectionTimeout)
	return cfg, nil
}

func parametersURI(d domain.DBCredentials) string {
	u := &url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Database,
	}
	if d.Username != "" {
		u.User = url.UserPassword(d.Username, d.Password)
	}
	if d.SSL {
		u.RawQuery = "tls=true"
	}
	return u.String()
}
