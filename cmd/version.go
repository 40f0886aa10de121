package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// newVersionCmd 创建 version 子命令，同时输出构建使用的 Go 版本与平台。
func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本号与构建信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("gocda %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
