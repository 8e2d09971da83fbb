// Package domain file: internal/core/domain/catalog_models.go
package domain

import "time"

// DatabaseRecord 是目录中保存的一条连接记录，凭证以密文存放
type DatabaseRecord struct {
	ID                   string
	Source               Source
	Mode                 Mode
	DBName               string
	EncryptedCredentials string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Summary 返回不含凭证的对外视图
func (r DatabaseRecord) Summary() DatabaseSummary {
	return DatabaseSummary{
		ID:        r.ID,
		Source:    r.Source,
		Mode:      r.Mode,
		DBName:    r.DBName,
		CreatedAt: r.CreatedAt,
	}
}

// DatabaseSummary 用于列表与激活状态接口
type DatabaseSummary struct {
	ID        string    `json:"id"`
	Source    Source    `json:"source"`
	Mode      Mode      `json:"mode"`
	DBName    string    `json:"dbName"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConnectResult 是连接成功后的返回
type ConnectResult struct {
	DatabaseID string `json:"databaseId"`
	Source     Source `json:"source"`
	DBName     string `json:"dbName"`
	TableCount int    `json:"tableCount"`
}
