// Package postgres file: internal/adapter/database/postgres/normalize.go
package postgres

import "DBTalk/internal/core/domain"

type tableRow struct {
	Name string
}

type columnRow struct {
	Table      string
	Column     string
	DataType   string
	IsNullable string
}

type keyRow struct {
	Table  string
	Column string
}

type foreignKeyRow struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
}

// rawCatalog 是四个 information_schema 查询的原始结果
type rawCatalog struct {
	Tables      []tableRow
	Columns     []columnRow
	PrimaryKeys []keyRow
	ForeignKeys []foreignKeyRow
}

// normalize 把目录查询结果合并为统一结构。
// 列按目录的 ordinal 顺序追加；不属于已知基础表的列(例如视图的列)被丢弃。
func normalize(raw rawCatalog) *domain.UnifiedSchema {
	s := &domain.UnifiedSchema{
		Source: domain.SourcePostgres,
		Tables: make(map[string]*domain.TableSchema, len(raw.Tables)),
	}
	for _, t := range raw.Tables {
		s.Tables[t.Name] = &domain.TableSchema{Columns: []domain.ColumnSchema{}, PrimaryKey: []string{}}
	}

	pks := make(map[string]map[string]struct{})
	for _, pk := range raw.PrimaryKeys {
		if pks[pk.Table] == nil {
			pks[pk.Table] = make(map[string]struct{})
		}
		pks[pk.Table][pk.Column] = struct{}{}
	}

	fks := make(map[string][]domain.ForeignKey)
	for _, fk := range raw.ForeignKeys {
		key := fk.SourceTable + "." + fk.SourceColumn
		fks[key] = append(fks[key], domain.ForeignKey{
			ReferencesTable:  fk.TargetTable,
			ReferencesColumn: fk.TargetColumn,
		})
	}

	for _, c := range raw.Columns {
		table, ok := s.Tables[c.Table]
		if !ok {
			continue
		}
		_, isPK := pks[c.Table][c.Column]
		refs := fks[c.Table+"."+c.Column]
		if refs == nil {
			refs = []domain.ForeignKey{}
		}
		table.Columns = append(table.Columns, domain.ColumnSchema{
			Name:         c.Column,
			Type:         c.DataType,
			Nullable:     c.IsNullable == "YES",
			IsPrimaryKey: isPK,
			ForeignKeys:  refs,
		})
		if isPK {
			table.PrimaryKey = append(table.PrimaryKey, c.Column)
		}
	}
	return s
}
