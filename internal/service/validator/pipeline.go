// Package validator file: internal/service/validator/pipeline.go
package validator

import (
	"DBTalk/internal/core/domain"
	"fmt"
	"strings"
)

// blockedOperators 可执行服务端代码或写入数据的聚合阶段
var blockedOperators = map[string]struct{}{
	"$where":       {},
	"$function":    {},
	"$accumulator": {},
	"$merge":       {},
	"$out":         {},
}

// ValidatePipeline 校验聚合管道: 每个阶段恰好一个以 $ 开头且未被屏蔽的操作符。
// 空管道视为合法。只检查阶段的顶层键。
func ValidatePipeline(pipeline []map[string]any) domain.ValidationResult {
	for _, stage := range pipeline {
		if len(stage) != 1 {
			return reject("无效的聚合阶段")
		}
		for op := range stage {
			if !strings.HasPrefix(op, "$") {
				return reject("无效的聚合操作符")
			}
			if _, blocked := blockedOperators[op]; blocked {
				return reject(fmt.Sprintf("不允许使用操作符 %s", op))
			}
		}
	}
	return domain.ValidationResult{Valid: true}
}

// ValidatePayload 按查询类型分派到对应的校验器
func ValidatePayload(p domain.QueryPayload) domain.ValidationResult {
	switch p.Type {
	case domain.QueryTypeSQL:
		return ValidateSQL(p.SQL)
	case domain.QueryTypeMongo:
		if p.Collection == "" {
			return reject("缺少集合名")
		}
		if p.Pipeline == nil {
			return reject("聚合管道必须是数组")
		}
		return ValidatePipeline(p.Pipeline)
	default:
		return reject(fmt.Sprintf("未知的查询类型 '%s'", p.Type))
	}
}
