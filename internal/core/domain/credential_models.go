// Package domain file: internal/core/domain/credential_models.go
package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Source 标识数据库引擎种类
type Source string

const (
	SourcePostgres Source = "postgres"
	SourceMongo    Source = "mongo"
)

// Mode 标识凭证的提供方式: 连接串 或 参数集合
type Mode string

const (
	ModeURL        Mode = "url"
	ModeParameters Mode = "parameters"
)

// DBCredentials 是一次连接所需的原始凭证。
// url 模式只使用 ConnectionString；parameters 模式使用其余字段。
type DBCredentials struct {
	ConnectionString string `json:"connectionString,omitempty"`
	Host             string `json:"host,omitempty"`
	Port             int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Database         string `json:"database,omitempty"`
	Username         string `json:"username,omitempty"`
	Password         string `json:"password,omitempty"`
	SSL              bool   `json:"ssl,omitempty"`
}

// ConnectionCredential 是用户提交的一组完整连接信息
type ConnectionCredential struct {
	Source        Source        `json:"source" validate:"required,oneof=postgres mongo"`
	Mode          Mode          `json:"mode" validate:"required"`
	DBCredentials DBCredentials `json:"dbCredentials"`
}

var credentialValidate = validator.New()

// Validate 校验凭证结构: url 模式必须且只能给出连接串，parameters 模式必须给出主机、端口和库名。
// 未知模式不在此处拒绝，由各引擎构建配置时报告 ErrUnsupportedMode。
func (c ConnectionCredential) Validate() error {
	if err := credentialValidate.Struct(c); err != nil {
		return err
	}
	d := c.DBCredentials
	switch c.Mode {
	case ModeURL:
		if strings.TrimSpace(d.ConnectionString) == "" {
			return errors.New("url 模式缺少 connectionString")
		}
		if d.Host != "" || d.Database != "" || d.Port != 0 {
			return errors.New("url 模式不能同时提供参数字段")
		}
	case ModeParameters:
		if d.ConnectionString != "" {
			return errors.New("parameters 模式不能同时提供 connectionString")
		}
		if d.Host == "" || d.Port == 0 || d.Database == "" {
			return errors.New("parameters 模式需要 host、port 和 database")
		}
	}
	return nil
}

// Masked 返回一份隐藏了密码的副本，用于日志输出
func (c ConnectionCredential) Masked() ConnectionCredential {
	out := c
	if out.DBCredentials.Password != "" {
		out.DBCredentials.Password = "******"
	}
	if cs := out.DBCredentials.ConnectionString; cs != "" {
		if u, err := url.Parse(cs); err == nil && u.User != nil {
			if _, ok := u.User.Password(); ok {
				u.User = url.UserPassword(u.User.Username(), "******")
				out.DBCredentials.ConnectionString = u.String()
			}
		}
	}
	return out
}

// ExtractDBName 从凭证中推导库名: url 模式取连接串路径，parameters 模式取 database 字段。
func ExtractDBName(c ConnectionCredential) (string, error) {
	switch c.Mode {
	case ModeParameters:
		if c.DBCredentials.Database == "" {
			return "", errors.New("凭证中缺少 database")
		}
		return c.DBCredentials.Database, nil
	case ModeURL:
		u, err := url.Parse(c.DBCredentials.ConnectionString)
		if err != nil {
			return "", fmt.Errorf("解析连接串失败: %w", err)
		}
		name := strings.Trim(u.Path, "/")
		if name == "" {
			return "", errors.New("连接串中未包含库名")
		}
		return name, nil
	default:
		return "", fmt.Errorf("不支持的连接模式 '%s'", c.Mode)
	}
}
