// Package domain file: internal/core/domain/schema_models.go
package domain

// ForeignKey 指向另一个实体的字段
type ForeignKey struct {
	ReferencesTable  string `json:"referencesTable"`
	ReferencesColumn string `json:"referencesColumn"`
}

// ColumnSchema 描述一个字段
type ColumnSchema struct {
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	Nullable     bool         `json:"nullable"`
	IsPrimaryKey bool         `json:"isPrimaryKey"`
	ForeignKeys  []ForeignKey `json:"foreignKeys"`
}

// TableSchema 描述一张表或一个集合
type TableSchema struct {
	Columns    []ColumnSchema `json:"columns"`
	PrimaryKey []string       `json:"primaryKey"`
}

// UnifiedSchema 是与引擎无关的统一结构描述。
// 关系库的实体是表，文档库的实体是集合。
type UnifiedSchema struct {
	Source Source                  `json:"source"`
	Tables map[string]*TableSchema `json:"tables"`
}

// TableNames 返回实体名列表(无序)
func (s *UnifiedSchema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	return names
}
