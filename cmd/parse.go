package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"gocda/internal/languages"
)

// newParseCmd 创建 parse 子命令，直接分析已有的 CPD 文本报告，不运行检测器。
// 示例：
//
//	gocda parse ./report.txt --source ./App --destination ./Legacy
func newParseCmd(registry *languages.Registry, root *rootOptions) *cobra.Command {
	parseCmd := &cobra.Command{
		Use:   "parse [report]",
		Short: "解析已有的 CPD 报告并统计重复率",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, root)
			if err != nil {
				return err
			}

			language, err := lookupLanguage(registry, s.cfg.Language)
			if err != nil {
				return err
			}

			reportPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve report: %w", err)
			}

			return analyzeReport(cmd, registry, s, "", reportPath, language)
		},
	}

	addAnalysisFlags(parseCmd)
	return parseCmd
}
