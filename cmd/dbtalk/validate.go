// file: cmd/dbtalk/validate.go

package main

import (
	"DBTalk/internal/core/domain"
	"DBTalk/internal/service/validator"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var errRejected = errors.New("查询未通过校验")

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "离线检查一条查询能否通过安全校验",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "sql <query>",
		Short:   "校验 SQL 语句",
		Args:    cobra.ExactArgs(1),
		Example: `  dbtalk validate sql 'SELECT * FROM "users" LIMIT 10'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cmd.OutOrStdout(), validator.ValidateSQL(args[0]))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "pipeline <json>",
		Short:   "校验 MongoDB 聚合管道(JSON 数组)",
		Args:    cobra.ExactArgs(1),
		Example: `  dbtalk validate pipeline '[{"$match":{"status":"A"}},{"$limit":5}]'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var pipeline []map[string]any
			if err := json.Unmarshal([]byte(args[0]), &pipeline); err != nil {
				return report(cmd.OutOrStdout(), domain.ValidationResult{Valid: false, Reason: "聚合管道必须是数组"})
			}
			return report(cmd.OutOrStdout(), validator.ValidatePipeline(pipeline))
		},
	})
	return cmd
}

// report 输出校验结论，未通过时返回错误使进程以非零码退出
func report(w io.Writer, res domain.ValidationResult) error {
	out, err := json.Marshal(res)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	if !res.Valid {
		return fmt.Errorf("%w: %s", errRejected, res.Reason)
	}
	return nil
}
