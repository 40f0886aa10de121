package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"gocda/internal/languages"
	"gocda/internal/report"
	"gocda/internal/scanner"
)

// scanOptions 存放 scan 命令独有的参数。
type scanOptions struct {
	language string
	format   string
	output   string
}

// newScanCmd 创建 scan 子命令。
// 示例：
//
//	gocda scan .
//	gocda scan ./project --language swift --exclude "Pods/**" --format json --output result.json
func newScanCmd(registry *languages.Registry, root *rootOptions) *cobra.Command {
	options := scanOptions{format: "table"}

	scanCmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "扫描目录或文件并输出行数统计",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, root)
			if err != nil {
				return err
			}

			format, err := report.ParseFormat(options.format)
			if err != nil {
				return err
			}

			service, err := scanner.NewService(registry, s.cfg.Scan.Exclude, s.logger)
			if err != nil {
				return err
			}

			result, err := service.ScanPath(args[0], options.language)
			if err != nil {
				return err
			}
			s.logger.Debug("scan finished", "files", result.Total.Files, "errors", len(result.Errors))

			if err := report.PrintScan(cmd.OutOrStdout(), format, result); err != nil {
				return err
			}

			outputPath := strings.TrimSpace(options.output)
			if outputPath == "" {
				return nil
			}
			exportFormat := report.FormatForFile(outputPath, format)
			if err := report.WriteFile(outputPath, exportFormat, result); err != nil {
				return err
			}
			s.logger.Info("result exported", "path", outputPath, "format", exportFormat)
			return nil
		},
	}

	scanCmd.Flags().StringVar(&options.language, "language", "", "只统计指定语言，默认统计全部已支持语言")
	scanCmd.Flags().StringVar(&options.format, "format", options.format, "输出格式: table, json 或 yaml")
	scanCmd.Flags().StringVar(&options.output, "output", "", "结果导出文件路径，按扩展名选择 json 或 yaml")
	scanCmd.Flags().StringSlice("exclude", nil, "排除的 glob（相对扫描根目录），可重复")

	return scanCmd
}
