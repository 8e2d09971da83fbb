// Package schema file: internal/service/schema/description.go
package schema

import (
	"DBTalk/internal/core/domain"
	"fmt"
	"sort"
	"strings"
)

// Describe 把结构渲染成给生成器阅读的纯文本。实体按名称排序输出。
func Describe(s *domain.UnifiedSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Database Type: %s\n", s.Source)

	names := s.TableNames()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "\nEntity: %s\nFields:\n", name)
		for _, col := range s.Tables[name].Columns {
			fmt.Fprintf(&b, "  - %s (%s)", col.Name, col.Type)
			if col.IsPrimaryKey {
				b.WriteString(" [PRIMARY KEY]")
			}
			if !col.Nullable {
				b.WriteString(" [NOT NULL]")
			}
			for _, fk := range col.ForeignKeys {
				fmt.Fprintf(&b, " [FK → %s.%s]", fk.ReferencesTable, fk.ReferencesColumn)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
