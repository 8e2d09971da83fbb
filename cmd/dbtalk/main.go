// file: cmd/dbtalk/main.go

package main

import (
	"os"

	"github.com/spf13/cobra"
)

const version = "v0.3.0"

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dbtalk",
		Short: "DBTalk - 用自然语言查询 PostgreSQL 与 MongoDB",
		Long: `DBTalk 把自然语言问题转换为只读查询，在当前连接的数据库上执行并返回结果。

生成的每一条 SQL 或聚合管道在执行前都会经过安全校验。`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "configs/config.yaml", "配置文件路径")

	root.AddCommand(newServeCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newHashPasswordCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
