// file: internal/service/database_manager.go
package service

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"DBTalk/internal/observe"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	pendingKeyPrefix = "db_cred:"
	schemaKeyPrefix  = "db_schema:"

	defaultPendingTTL = 10 * time.Minute
	defaultSchemaTTL  = 3600 * time.Second
)

func pendingKey(id string) string { return pendingKeyPrefix + id }
func schemaKey(id string) string  { return schemaKeyPrefix + id }

// DatabaseManager 编排 凭证测试 → 保存 → 连接 → 结构缓存 的完整流程
type DatabaseManager struct {
	adapters port.AdapterLookup
	pools    port.ConnectionRegistry
	catalog  port.CatalogStore
	cache    port.KVCache
	cipher   port.CredentialCipher

	pendingTTL time.Duration
	schemaTTL  time.Duration
	newID      func() string
	now        func() time.Time
}

// 静态断言
var _ port.DatabaseService = (*DatabaseManager)(nil)

// DatabaseManagerOptions 是可选的缓存时长设置，零值使用默认值
type DatabaseManagerOptions struct {
	PendingTTL time.Duration
	SchemaTTL  time.Duration
}

// NewDatabaseManager 创建 DatabaseManager
func NewDatabaseManager(
	adapters port.AdapterLookup,
	pools port.ConnectionRegistry,
	catalog port.CatalogStore,
	cache port.KVCache,
	cipher port.CredentialCipher,
	opts DatabaseManagerOptions,
) *DatabaseManager {
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = defaultPendingTTL
	}
	if opts.SchemaTTL <= 0 {
		opts.SchemaTTL = defaultSchemaTTL
	}
	return &DatabaseManager{
		adapters:   adapters,
		pools:      pools,
		catalog:    catalog,
		cache:      cache,
		cipher:     cipher,
		pendingTTL: opts.PendingTTL,
		schemaTTL:  opts.SchemaTTL,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// TestConnection 探测凭证是否可用，成功后把加密凭证暂存并返回待保存 ID
func (m *DatabaseManager) TestConnection(ctx context.Context, cred domain.ConnectionCredential) (string, error) {
	if err := cred.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", port.ErrInvalidCredential, err)
	}
	adapter, err := m.adapters.Get(cred.Source)
	if err != nil {
		return "", err
	}
	if err := adapter.TestConnection(ctx, cred); err != nil {
		slog.Warn("[DatabaseManager] 测试连接失败", "source", cred.Source, "error", err)
		return "", err
	}

	encrypted, err := m.cipher.Encrypt(cred)
	if err != nil {
		return "", fmt.Errorf("加密凭证失败: %w", err)
	}
	id := m.newID()
	if err := m.cache.Set(ctx, pendingKey(id), []byte(encrypted), m.pendingTTL); err != nil {
		return "", fmt.Errorf("暂存凭证失败: %w", err)
	}
	slog.Info("[DatabaseManager] 测试连接成功，凭证已暂存", "pending_id", id, "source", cred.Source)
	return id, nil
}

// SaveDatabase 把暂存的凭证写入目录。dbName 为空时从凭证推导。
func (m *DatabaseManager) SaveDatabase(ctx context.Context, pendingID, dbName string) (*domain.DatabaseSummary, error) {
	raw, ok, err := m.cache.Get(ctx, pendingKey(pendingID))
	if err != nil {
		return nil, fmt.Errorf("读取暂存凭证失败: %w", err)
	}
	if !ok {
		return nil, port.ErrPendingNotFound
	}

	var cred domain.ConnectionCredential
	if err := m.cipher.Decrypt(string(raw), &cred); err != nil {
		return nil, err
	}
	if dbName == "" {
		if dbName, err = domain.ExtractDBName(cred); err != nil {
			return nil, fmt.Errorf("%w: %w", port.ErrInvalidCredential, err)
		}
	}

	exists, err := m.catalog.ExistsByName(ctx, cred.Source, dbName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: '%s'", port.ErrDuplicateDatabase, dbName)
	}

	now := m.now().UTC()
	rec := domain.DatabaseRecord{
		ID:                   m.newID(),
		Source:               cred.Source,
		Mode:                 cred.Mode,
		DBName:               dbName,
		EncryptedCredentials: string(raw),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := m.catalog.Insert(ctx, rec); err != nil {
		return nil, err
	}
	if err := m.cache.Del(ctx, pendingKey(pendingID)); err != nil {
		slog.Warn("[DatabaseManager] 清理暂存凭证失败", "pending_id", pendingID, "error", err)
	}

	slog.Info("[DatabaseManager] 数据库已保存", "database_id", rec.ID, "source", rec.Source, "db_name", dbName)
	summary := rec.Summary()
	return &summary, nil
}

// ConnectDatabase 连接已保存的数据库并缓存其结构。
// 连接之后任何一步失败都会断开并清除缓存。
func (m *DatabaseManager) ConnectDatabase(ctx context.Context, databaseID string) (result *domain.ConnectResult, err error) {
	rec, err := m.catalog.Get(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	adapter, err := m.adapters.Get(rec.Source)
	if err != nil {
		return nil, err
	}
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failed"
		}
		observe.ConnectAttempts.WithLabelValues(string(rec.Source), outcome).Inc()
	}()

	var cred domain.ConnectionCredential
	if err := m.cipher.Decrypt(rec.EncryptedCredentials, &cred); err != nil {
		return nil, err
	}

	if _, err := adapter.Connect(ctx, databaseID, &cred); err != nil {
		// 已连接时保留现有连接
		if errors.Is(err, port.ErrAlreadyConnected) {
			return nil, err
		}
		m.teardown(ctx, adapter, databaseID)
		return nil, err
	}

	schema, err := adapter.IntrospectSchema(ctx, databaseID)
	if err != nil {
		slog.Error("[DatabaseManager] 读取数据库结构失败", "database_id", databaseID, "error", err)
		m.teardown(ctx, adapter, databaseID)
		return nil, err
	}
	data, err := json.Marshal(schema)
	if err != nil {
		m.teardown(ctx, adapter, databaseID)
		return nil, fmt.Errorf("序列化数据库结构失败: %w", err)
	}
	if err := m.cache.Set(ctx, schemaKey(databaseID), data, m.schemaTTL); err != nil {
		m.teardown(ctx, adapter, databaseID)
		return nil, fmt.Errorf("缓存数据库结构失败: %w", err)
	}

	slog.Info("[DatabaseManager] 数据库已连接", "database_id", databaseID, "source", rec.Source, "tables", len(schema.Tables))
	return &domain.ConnectResult{
		DatabaseID: databaseID,
		Source:     rec.Source,
		DBName:     rec.DBName,
		TableCount: len(schema.Tables),
	}, nil
}

func (m *DatabaseManager) teardown(ctx context.Context, adapter port.Adapter, databaseID string) {
	adapter.Disconnect(ctx, databaseID)
	if err := m.cache.Del(ctx, schemaKey(databaseID)); err != nil {
		slog.Warn("[DatabaseManager] 清除结构缓存失败", "database_id", databaseID, "error", err)
	}
}

// ListDatabases 列出已保存的数据库，不含凭证
func (m *DatabaseManager) ListDatabases(ctx context.Context) ([]domain.DatabaseSummary, error) {
	recs, err := m.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DatabaseSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Summary())
	}
	return out, nil
}

// DeleteDatabases 删除记录，随后尽力清理缓存与连接，返回删除条数
func (m *DatabaseManager) DeleteDatabases(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: ids 不能为空", port.ErrInvalidRequest)
	}
	deleted, err := m.catalog.Delete(ctx, ids)
	if err != nil {
		return 0, err
	}
	for _, rec := range deleted {
		adapter, err := m.adapters.Get(rec.Source)
		if err != nil {
			slog.Warn("[DatabaseManager] 删除后清理失败", "database_id", rec.ID, "error", err)
			_ = m.cache.Del(ctx, schemaKey(rec.ID))
			continue
		}
		m.teardown(ctx, adapter, rec.ID)
	}
	slog.Info("[DatabaseManager] 已删除数据库", "requested", len(ids), "deleted", len(deleted))
	return len(deleted), nil
}

// GetActiveDatabase 返回当前活动连接对应的记录
func (m *DatabaseManager) GetActiveDatabase(ctx context.Context) (*domain.DatabaseSummary, error) {
	id, err := m.pools.Active()
	if err != nil {
		return nil, err
	}
	rec, err := m.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := rec.Summary()
	return &summary, nil
}

// DisconnectDatabase 断开连接。结构缓存无论如何都会被清除。
func (m *DatabaseManager) DisconnectDatabase(ctx context.Context, databaseID string) error {
	defer func() {
		if err := m.cache.Del(ctx, schemaKey(databaseID)); err != nil {
			slog.Warn("[DatabaseManager] 清除结构缓存失败", "database_id", databaseID, "error", err)
		}
	}()
	rec, err := m.catalog.Get(ctx, databaseID)
	if err != nil {
		return err
	}
	adapter, err := m.adapters.Get(rec.Source)
	if err != nil {
		return err
	}
	adapter.Disconnect(ctx, databaseID)
	return nil
}

// CachedSchema 读取连接时缓存的结构
func (m *DatabaseManager) CachedSchema(ctx context.Context, databaseID string) (*domain.UnifiedSchema, error) {
	raw, ok, err := m.cache.Get(ctx, schemaKey(databaseID))
	if err != nil {
		return nil, fmt.Errorf("读取结构缓存失败: %w", err)
	}
	if !ok {
		return nil, port.ErrSchemaNotCached
	}
	var s domain.UnifiedSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		slog.Error("[DatabaseManager] 结构缓存已损坏", "database_id", databaseID, "error", err)
		return nil, port.ErrSchemaNotCached
	}
	return &s, nil
}

// ExecuteQuery 在活动连接上执行查询
func (m *DatabaseManager) ExecuteQuery(ctx context.Context, databaseID string, source domain.Source, payload domain.QueryPayload) (domain.ExecutionResult, error) {
	adapter, err := m.adapters.Get(source)
	if err != nil {
		return domain.ExecutionResult{}, err
	}
	handle, ok := m.pools.Get(databaseID)
	if !ok {
		return domain.ExecutionResult{}, port.ErrNoActiveConnection
	}
	return adapter.ExecuteQuery(ctx, payload, handle), nil
}
