// Package validator file: internal/service/validator/sql.go
//
// 只读查询的安全校验。校验在生成之后、执行之前进行，执行层会再校验一次。
package validator

import (
	"DBTalk/internal/core/domain"
	"fmt"
	"regexp"
	"strings"
)

// dangerousKeywords 中的任何一个作为独立单词出现即拒绝。
// CROSS 用于屏蔽笛卡尔积类的昂贵查询。
var dangerousKeywords = []string{
	"DROP", "DELETE", "TRUNCATE", "ALTER", "CREATE", "INSERT", "UPDATE",
	"GRANT", "REVOKE", "EXECUTE", "EXEC", "CROSS",
}

var keywordPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(dangerousKeywords))
	for i, kw := range dangerousKeywords {
		out[i] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return out
}()

// ValidateSQL 判断一条 SQL 是否为单条只读语句
func ValidateSQL(sql string) domain.ValidationResult {
	normalized := strings.ToUpper(strings.TrimSpace(sql))

	for i, re := range keywordPatterns {
		if re.MatchString(normalized) {
			return reject(fmt.Sprintf("查询包含被禁止的操作: %s", dangerousKeywords[i]))
		}
	}

	if !strings.HasPrefix(normalized, "SELECT") && !strings.HasPrefix(normalized, "WITH") {
		return reject("只允许 SELECT 查询")
	}

	// 末尾的一个分号是允许的，其余位置出现分号视为多语句
	if n := strings.Count(normalized, ";"); n > 1 || (n == 1 && !strings.HasSuffix(normalized, ";")) {
		return reject("检测到多条语句或可疑的分号")
	}

	return domain.ValidationResult{Valid: true}
}

func reject(reason string) domain.ValidationResult {
	return domain.ValidationResult{Valid: false, Reason: reason}
}
