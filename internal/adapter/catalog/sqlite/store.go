// Package sqlite file: internal/adapter/catalog/sqlite/store.go
//
// 已保存连接的目录，落在本地 SQLite 文件中。凭证列只保存密文。
package sqlite

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/core/port"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	_ "modernc.org/sqlite"
)

const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS database_connections (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    mode TEXT NOT NULL,
    db_name TEXT NOT NULL,
    db_credentials TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    UNIQUE (source, db_name)
);`

	recordColumns = "id, source, mode, db_name, db_credentials, created_at, updated_at"

	insertRecordSQL = "INSERT INTO database_connections (" + recordColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)"
	selectRecordSQL = "SELECT " + recordColumns + " FROM database_connections WHERE id = ?"
	existsByNameSQL = "SELECT COUNT(1) FROM database_connections WHERE source = ? AND db_name = ?"
	listRecordsSQL  = "SELECT " + recordColumns + " FROM database_connections ORDER BY created_at DESC, id"
)

// Store 实现 port.CatalogStore，按 id 的读取经过一层过期 LRU 缓存
type Store struct {
	db    *sql.DB
	cache *lru.LRU[string, domain.DatabaseRecord]
}

var _ port.CatalogStore = (*Store)(nil)

// Open 打开(或创建)目录文件并确保表结构存在
func Open(ctx context.Context, path string, maxCacheEntries int, cacheTTL time.Duration) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开目录数据库 '%s' 失败: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("连接目录数据库 '%s' (Ping) 失败: %w", path, err)
	}
	s, err := NewStore(db, maxCacheEntries, cacheTTL)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore 基于已打开的连接创建目录
func NewStore(db *sql.DB, maxCacheEntries int, cacheTTL time.Duration) (*Store, error) {
	if db == nil {
		return nil, errors.New("目录初始化失败: db 实例不能为 nil")
	}
	if maxCacheEntries <= 0 {
		maxCacheEntries = 256
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Store{db: db, cache: lru.NewLRU[string, domain.DatabaseRecord](maxCacheEntries, nil, cacheTTL)}, nil
}

// Migrate 创建目录表
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("创建 'database_connections' 表失败: %w", err)
	}
	return nil
}

// Close 关闭底层连接
func (s *Store) Close() error {
	s.cache.Purge()
	return s.db.Close()
}

// Insert 写入一条记录，(source, db_name) 冲突时返回 port.ErrDuplicateDatabase
func (s *Store) Insert(ctx context.Context, rec domain.DatabaseRecord) error {
	_, err := s.db.ExecContext(ctx, insertRecordSQL,
		rec.ID, string(rec.Source), string(rec.Mode), rec.DBName, rec.EncryptedCredentials,
		rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: '%s'", port.ErrDuplicateDatabase, rec.DBName)
		}
		return fmt.Errorf("保存数据库记录失败: %w", err)
	}
	return nil
}

// Get 按 id 读取，不存在返回 port.ErrDatabaseNotFound
func (s *Store) Get(ctx context.Context, id string) (*domain.DatabaseRecord, error) {
	if rec, ok := s.cache.Get(id); ok {
		return &rec, nil
	}
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectRecordSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: '%s'", port.ErrDatabaseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("读取数据库记录 '%s' 失败: %w", id, err)
	}
	s.cache.Add(id, *rec)
	return rec, nil
}

// ExistsByName 判断同类型引擎下是否已有同名库
func (s *Store) ExistsByName(ctx context.Context, source domain.Source, dbName string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, existsByNameSQL, string(source), dbName).Scan(&n); err != nil {
		return false, fmt.Errorf("查询同名数据库失败: %w", err)
	}
	return n > 0, nil
}

// List 返回全部记录，新建的在前
func (s *Store) List(ctx context.Context) ([]domain.DatabaseRecord, error) {
	rows, err := s.db.QueryContext(ctx, listRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("列出数据库记录失败: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DatabaseRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描数据库记录失败: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Delete 在一个事务内删除 ids 对应的记录并返回被删除的记录，不存在的 id 被忽略
func (s *Store) Delete(ctx context.Context, ids []string) ([]domain.DatabaseRecord, error) {
	if len(ids) == 0 {
		return []domain.DatabaseRecord{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("开启事务失败: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, "SELECT "+recordColumns+" FROM database_connections WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("查询待删除记录失败: %w", err)
	}
	deleted := make([]domain.DatabaseRecord, 0, len(ids))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("扫描待删除记录失败: %w", err)
		}
		deleted = append(deleted, *rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM database_connections WHERE id IN ("+placeholders+")", args...); err != nil {
		return nil, fmt.Errorf("删除数据库记录失败: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}

	for _, id := range ids {
		s.cache.Remove(id)
	}
	slog.Info("[CatalogStore] 已删除数据库记录", "requested", len(ids), "deleted", len(deleted))
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(r rowScanner) (*domain.DatabaseRecord, error) {
	var (
		rec                domain.DatabaseRecord
		source, mode       string
		createdAt, updated int64
	)
	if err := r.Scan(&rec.ID, &source, &mode, &rec.DBName, &rec.EncryptedCredentials, &createdAt, &updated); err != nil {
		return nil, err
	}
	rec.Source = domain.Source(source)
	rec.Mode = domain.Mode(mode)
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	return &rec, nil
}
