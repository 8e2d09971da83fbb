// Package mongo file: internal/adapter/database/mongo/normalize.go
package mongo

import (
	"DBTalk/internal/core/domain"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sampleSize 每个集合采样的文档数
const sampleSize = 50

const typeSeparator = " | "

// foreignKeyPattern 按命名约定推断外键: userId / user_id → users._id。
// 这是近似推断，复数形式只是简单追加 s。
var foreignKeyPattern = regexp.MustCompile(`^(.+?)(_?id)$`)

type fieldStats struct {
	types    []string
	seen     map[string]struct{}
	present  int
	nullSeen bool
}

// normalize 根据样本文档推断每个集合的字段结构。
// 字段按首次出现的顺序输出；只要有样本缺失该字段或值为 null 即视为可空。
func normalize(samples map[string][]bson.D) *domain.UnifiedSchema {
	s := &domain.UnifiedSchema{
		Source: domain.SourceMongo,
		Tables: make(map[string]*domain.TableSchema, len(samples)),
	}
	for name, docs := range samples {
		s.Tables[name] = normalizeCollection(docs)
	}
	return s
}

func normalizeCollection(docs []bson.D) *domain.TableSchema {
	var order []string
	stats := make(map[string]*fieldStats)

	for _, doc := range docs {
		for _, elem := range doc {
			st, ok := stats[elem.Key]
			if !ok {
				st = &fieldStats{seen: make(map[string]struct{})}
				stats[elem.Key] = st
				order = append(order, elem.Key)
			}
			st.present++
			tag := inferType(elem.Value)
			if tag == "" {
				st.nullSeen = true
				continue
			}
			if _, dup := st.seen[tag]; !dup {
				st.seen[tag] = struct{}{}
				st.types = append(st.types, tag)
			}
		}
	}

	table := &domain.TableSchema{Columns: make([]domain.ColumnSchema, 0, len(order)), PrimaryKey: []string{"_id"}}
	for _, field := range order {
		st := stats[field]
		typ := "unknown"
		if len(st.types) > 0 {
			typ = strings.Join(st.types, typeSeparator)
		}
		table.Columns = append(table.Columns, domain.ColumnSchema{
			Name:         field,
			Type:         typ,
			Nullable:     st.nullSeen || st.present < len(docs),
			IsPrimaryKey: field == "_id",
			ForeignKeys:  inferForeignKeys(field),
		})
	}
	return table
}

func inferForeignKeys(field string) []domain.ForeignKey {
	lowered := strings.ToLower(field)
	if lowered == "_id" {
		return []domain.ForeignKey{}
	}
	m := foreignKeyPattern.FindStringSubmatch(lowered)
	if m == nil {
		return []domain.ForeignKey{}
	}
	return []domain.ForeignKey{{ReferencesTable: m[1] + "s", ReferencesColumn: "_id"}}
}

// inferType 返回 BSON 值的类型标签，null 返回空串
func inferType(v any) string {
	switch v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return ""
	case string, primitive.Symbol:
		return "string"
	case int, int32, int64, float32, float64, primitive.Decimal128:
		return "number"
	case bool:
		return "boolean"
	case primitive.DateTime, primitive.Timestamp, time.Time:
		return "date"
	case primitive.A, []any:
		return "array"
	case primitive.D, primitive.M, map[string]any, primitive.ObjectID, primitive.Binary, primitive.Regex:
		return "object"
	default:
		return "unknown"
	}
}
