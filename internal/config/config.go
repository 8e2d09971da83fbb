// Package config 负责集中式配置加载: 配置文件 → DBTALK_ 环境变量 → 默认值
package config

import (
	"DBTalk/internal/adapter/database/mongo"
	"DBTalk/internal/adapter/database/postgres"
	"DBTalk/internal/adapter/llm/anthropic"
	"DBTalk/internal/service"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 是环境变量前缀，例如 DBTALK_SERVER_PORT
const EnvPrefix = "DBTALK"

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	LogLevel    string   `mapstructure:"log_level"`
	LogFormat   string   `mapstructure:"log_format"`
	PprofAddr   string   `mapstructure:"pprof_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type SecurityConfig struct {
	EncryptionSecret string        `mapstructure:"encryption_secret"`
	AskPerMinute     float64       `mapstructure:"ask_per_minute"`
	AskBurst         int           `mapstructure:"ask_burst"`
	LoginMaxFailures int           `mapstructure:"login_max_failures"`
	LoginLockout     time.Duration `mapstructure:"login_lockout"`
}

type CatalogConfig struct {
	Path         string        `mapstructure:"path"`
	CacheEntries int           `mapstructure:"cache_entries"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type CacheConfig struct {
	SchemaTTL       time.Duration `mapstructure:"schema_ttl"`
	PendingTTL      time.Duration `mapstructure:"pending_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type PoolConfig struct {
	Postgres postgres.Options `mapstructure:"postgres"`
	Mongo    mongo.Options    `mapstructure:"mongo"`
}

// Config 是完整的服务配置
type Config struct {
	Server   ServerConfig       `mapstructure:"server"`
	Auth     service.AuthConfig `mapstructure:"auth"`
	Security SecurityConfig     `mapstructure:"security"`
	Catalog  CatalogConfig      `mapstructure:"catalog"`
	Cache    CacheConfig        `mapstructure:"cache"`
	LLM      anthropic.Config   `mapstructure:"llm"`
	Pool     PoolConfig         `mapstructure:"pool"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 10224)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.pprof_addr", "")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.admin_password_hash", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("security.encryption_secret", "")
	v.SetDefault("security.ask_per_minute", 30)
	v.SetDefault("security.ask_burst", 5)
	v.SetDefault("security.login_max_failures", 5)
	v.SetDefault("security.login_lockout", 15*time.Minute)

	v.SetDefault("catalog.path", "instance/catalog.db")
	v.SetDefault("catalog.cache_entries", 256)
	v.SetDefault("catalog.cache_ttl", 5*time.Minute)

	v.SetDefault("cache.schema_ttl", 3600*time.Second)
	v.SetDefault("cache.pending_ttl", 10*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "claude-sonnet-4-5")
	v.SetDefault("llm.max_tokens", 1024)

	pg := postgres.DefaultOptions()
	v.SetDefault("pool.postgres.max_conns", pg.MaxConns)
	v.SetDefault("pool.postgres.connect_timeout", pg.ConnectTimeout)
	v.SetDefault("pool.postgres.idle_timeout", pg.IdleTimeout)

	mg := mongo.DefaultOptions()
	v.SetDefault("pool.mongo.max_conns", mg.MaxPoolSize)
	v.SetDefault("pool.mongo.idle_timeout", mg.IdleTimeout)
	v.SetDefault("pool.mongo.connect_timeout", mg.ServerSelectionTimeout)
}

// New 创建已设置默认值和环境变量映射的 viper 实例。
// path 非空时读取该文件，文件不存在视为错误。
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 '%s' 失败: %w", path, err)
		}
	}
	return v, nil
}

// Decode 把 viper 的当前值解析为 Config 并做基本校验
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置到结构体失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load 是 New + Decode
func Load(path string) (*Config, *viper.Viper, error) {
	v, err := New(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Validate 检查启动服务所必需的配置项
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port 非法: %d", c.Server.Port))
	}
	if c.Security.EncryptionSecret == "" {
		errs = append(errs, errors.New("security.encryption_secret 不能为空"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret 不能为空"))
	}
	if c.Catalog.Path == "" {
		errs = append(errs, errors.New("catalog.path 不能为空"))
	}
	return errors.Join(errs...)
}
