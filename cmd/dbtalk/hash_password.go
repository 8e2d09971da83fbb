// file: cmd/dbtalk/hash_password.go

package main

import (
	"DBTalk/internal/service"
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "生成 auth.admin_password_hash 所需的 bcrypt 哈希",
		Long:  "生成 bcrypt 哈希。未给出参数时从标准输入读取一行，避免密码留在 shell 历史中。",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("读取密码失败: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
