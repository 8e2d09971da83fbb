// Package postgres file: internal/adapter/database/postgres/introspect.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

const (
	selectTablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = 'public'
  AND table_type = 'BASE TABLE'`

	selectColumnsQuery = `
SELECT table_name, column_name, data_type, is_nullable
FROM information_schema.columns
WHERE table_schema = 'public'
ORDER BY table_name, ordinal_position`

	selectPrimaryKeysQuery = `
SELECT tc.table_name, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name
 AND tc.table_schema = kcu.table_schema
WHERE tc.constraint_type = 'PRIMARY KEY'
  AND tc.table_schema = 'public'
ORDER BY tc.table_name, kcu.ordinal_position`

	selectForeignKeysQuery = `
SELECT tc.table_name AS source_table,
       kcu.column_name AS source_column,
       ccu.table_name AS target_table,
       ccu.column_name AS target_column
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name
 AND tc.table_schema = kcu.table_schema
JOIN information_schema.constraint_column_usage ccu
  ON ccu.constraint_name = tc.constraint_name
 AND ccu.table_schema = tc.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY'
  AND tc.table_schema = 'public'`
)

// readCatalog 并发执行四个目录查询，全部完成后返回
func readCatalog(ctx context.Context, db pgPool) (rawCatalog, error) {
	var raw rawCatalog
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return queryInto(gctx, db, selectTablesQuery, func(rows pgx.Rows) error {
			var r tableRow
			if err := rows.Scan(&r.Name); err != nil {
				return err
			}
			raw.Tables = append(raw.Tables, r)
			return nil
		})
	})
	g.Go(func() error {
		return queryInto(gctx, db, selectColumnsQuery, func(rows pgx.Rows) error {
			var r columnRow
			if err := rows.Scan(&r.Table, &r.Column, &r.DataType, &r.IsNullable); err != nil {
				return err
			}
			raw.Columns = append(raw.Columns, r)
			return nil
		})
	})
	g.Go(func() error {
		return queryInto(gctx, db, selectPrimaryKeysQuery, func(rows pgx.Rows) error {
			var r keyRow
			if err := rows.Scan(&r.Table, &r.Column); err != nil {
				return err
			}
			raw.PrimaryKeys = append(raw.PrimaryKeys, r)
			return nil
		})
	})
	g.Go(func() error {
		return queryInto(gctx, db, selectForeignKeysQuery, func(rows pgx.Rows) error {
			var r foreignKeyRow
			if err := rows.Scan(&r.SourceTable, &r.SourceColumn, &r.TargetTable, &r.TargetColumn); err != nil {
				return err
			}
			raw.ForeignKeys = append(raw.ForeignKeys, r)
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return rawCatalog{}, fmt.Errorf("读取 postgres 目录失败: %w", err)
	}
	return raw, nil
}

func queryInto(ctx context.Context, db pgPool, sql string, scan func(pgx.Rows) error) error {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
