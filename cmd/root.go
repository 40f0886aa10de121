// Package cmd 提供 gocda 的命令行入口与子命令编排。
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"gocda/internal/config"
	"gocda/internal/languages"
	"gocda/internal/logging"
)

// rootOptions 存放所有子命令共享的参数。
type rootOptions struct {
	configPath string
	logLevel   string
	noColor    bool
}

// session 是一次命令执行所需的配置与日志。
type session struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Execute 组装根命令并执行。
// version 参数由 main 包注入，便于在 CI/CD 中打包不同版本。
func Execute(version string) error {
	registry := languages.NewRegistry()
	rootCmd := newRootCmd(version, registry)
	return rootCmd.ExecuteContext(context.Background())
}

// newRootCmd 创建根命令并注册全部子命令。
func newRootCmd(version string, registry *languages.Registry) *cobra.Command {
	options := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "gocda",
		Short: "基于 PMD CPD 报告的代码重复率统计工具",
		Long: "gocda 调用 PMD CPD 检测重复代码，解析其文本报告，\n" +
			"统计 source 目录中每个文件与 destination 目录重复的行数和比例。",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&options.configPath, "config", "", "配置文件路径，默认查找 ./.gocda.yaml 与 $HOME/.gocda.yaml")
	rootCmd.PersistentFlags().StringVar(&options.logLevel, "log-level", config.DefaultLogLevel, "日志级别: debug, info, warn, error, off")
	rootCmd.PersistentFlags().BoolVar(&options.noColor, "no-color", false, "关闭彩色输出")

	rootCmd.AddCommand(newVersionCmd(version))
	rootCmd.AddCommand(newLanguageCmd(registry))
	rootCmd.AddCommand(newScanCmd(registry, options))
	rootCmd.AddCommand(newAnalyzeCmd(registry, options))
	rootCmd.AddCommand(newParseCmd(registry, options))
	rootCmd.AddCommand(newSchemaCmd())

	return rootCmd
}

// loadSession 读取配置并创建日志。
// 日志写到命令的 stderr，stdout 只输出结果。
func loadSession(cmd *cobra.Command, options *rootOptions) (*session, error) {
	cfg, err := config.Load(options.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		NoColor: cfg.NoColor,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &session{cfg: cfg, logger: logger}, nil
}

// colorEnabled 判断结果输出是否着色：未指定 --no-color 且 stdout 是终端。
func (s *session) colorEnabled(cmd *cobra.Command) bool {
	return !s.cfg.NoColor && logging.IsTerminal(cmd.OutOrStdout())
}
