package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gocda/internal/config"
	"gocda/internal/detector"
	"gocda/internal/duplication"
	"gocda/internal/languages"
	"gocda/internal/metrics"
	"gocda/internal/report"
	"gocda/internal/scanner"
)

const noDuplicatesMessage = "Everything is fine, no code duplications found."

// cloneDetector 是 analyze 命令依赖的外部检测器。
type cloneDetector interface {
	Ensure(ctx context.Context) error
	Run(ctx context.Context, req detector.Request) (detector.Outcome, error)
}

// newDetector 便于测试替换外部检测器。
var newDetector = func(cfg *config.Config, logger *slog.Logger) cloneDetector {
	return &detector.Runner{
		Binary:         cfg.Detector.Binary,
		InstallCommand: cfg.Detector.InstallCommand,
		AutoInstall:    cfg.Detector.AutoInstall,
		Logger:         logger,
	}
}

// newAnalyzeCmd 创建 analyze 子命令。
// 示例：
//
//	gocda analyze --root . --source ./App --destination ./Legacy
//	gocda analyze --root . --source ./App --destination ./Legacy --language kotlin --format json --output dup.json
func newAnalyzeCmd(registry *languages.Registry, root *rootOptions) *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "运行 PMD CPD 并统计 source 与 destination 之间的重复率",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd, root)
			if err != nil {
				return err
			}
			if strings.TrimSpace(s.cfg.Root) == "" {
				return errors.New("root directory is required (--root)")
			}

			language, err := lookupLanguage(registry, s.cfg.Language)
			if err != nil {
				return err
			}

			rootDir, err := filepath.Abs(s.cfg.Root)
			if err != nil {
				return fmt.Errorf("resolve root: %w", err)
			}

			runner := newDetector(s.cfg, s.logger)
			if err := runner.Ensure(cmd.Context()); err != nil {
				return err
			}

			outcome, err := runner.Run(cmd.Context(), detector.Request{
				Root:          rootDir,
				Language:      language.CPDName(),
				MinimumTokens: s.cfg.MinimumTokens,
				ReportName:    s.cfg.ReportName,
			})
			if err != nil {
				return err
			}

			if !outcome.Duplicates {
				status := color.New(color.FgGreen)
				if s.colorEnabled(cmd) {
					status.EnableColor()
				} else {
					status.DisableColor()
				}
				_, err := status.Fprintln(cmd.OutOrStdout(), noDuplicatesMessage)
				return err
			}

			return analyzeReport(cmd, registry, s, rootDir, outcome.ReportPath, language)
		},
	}

	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().String("root", "", "交给检测器扫描的根目录，报告写入该目录")
	analyzeCmd.Flags().Int("minimum-tokens", detector.DefaultMinimumTokens, "判定为重复的最小 token 数")
	analyzeCmd.Flags().Bool("no-install", false, "检测器缺失时不尝试自动安装")

	return analyzeCmd
}

// addAnalysisFlags 注册 analyze 与 parse 共用的参数。
// 参数值经由配置层读取，这里只声明。
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "源目录，统计其中每个文件的重复率")
	cmd.Flags().String("destination", "", "目标目录，与源目录比较的一方")
	cmd.Flags().String("language", config.DefaultLanguage, "检测语言，见 gocda language")
	cmd.Flags().String("format", config.DefaultFormat, "输出格式: table, json 或 yaml")
	cmd.Flags().String("output", "", "结果导出文件路径，按扩展名选择 json 或 yaml")
	cmd.Flags().String("count-mode", config.DefaultCountMode, "文件行数口径: nonblank（只含空白字符的行也不计入）, all 或 code")
	cmd.Flags().String("metrics-file", "", "Prometheus textfile 指标导出路径")
}

func lookupLanguage(registry *languages.Registry, name string) (languages.Analyzer, error) {
	language, ok := registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", scanner.ErrUnknownLanguage, name)
	}
	return language, nil
}

// analyzeReport 解析报告、汇总并输出结果。
func analyzeReport(
	cmd *cobra.Command,
	registry *languages.Registry,
	s *session,
	rootDir string,
	reportPath string,
	language languages.Analyzer,
) error {
	cfg := s.cfg
	if strings.TrimSpace(cfg.Source) == "" || strings.TrimSpace(cfg.Destination) == "" {
		return errors.New("source and destination directories are required (--source, --destination)")
	}

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	mode, err := scanner.ParseCountMode(cfg.CountMode)
	if err != nil {
		return err
	}

	sourceDir, err := filepath.Abs(cfg.Source)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	destinationDir, err := filepath.Abs(cfg.Destination)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	files, err := scanner.NewService(registry, cfg.Scan.Exclude, s.logger)
	if err != nil {
		return err
	}
	counter := scanner.NewCachingCounter(registry, mode, s.logger)

	analyzer, err := duplication.NewAnalyzer(duplication.Config{
		Root:           rootDir,
		SourceDir:      sourceDir,
		DestinationDir: destinationDir,
		Language:       language.Name(),
	}, counter, files, s.logger)
	if err != nil {
		return err
	}

	result, err := analyzer.AnalyzeReport(reportPath)
	if err != nil {
		return err
	}
	s.logger.Debug("line counts cached", "files", counter.Cached())

	if err := report.PrintDuplication(cmd.OutOrStdout(), format, result, report.Options{Color: s.colorEnabled(cmd)}); err != nil {
		return err
	}

	if outputPath := strings.TrimSpace(cfg.Output); outputPath != "" {
		exportFormat := report.FormatForFile(outputPath, format)
		if err := report.WriteFile(outputPath, exportFormat, report.NewDuplicationDocument(result)); err != nil {
			return err
		}
		s.logger.Info("result exported", "path", outputPath, "format", exportFormat)
	}

	if metricsPath := strings.TrimSpace(cfg.MetricsFile); metricsPath != "" {
		exporter := metrics.NewExporter()
		exporter.Observe(result)
		if err := exporter.WriteTextfile(metricsPath); err != nil {
			return err
		}
		s.logger.Info("metrics written", "path", metricsPath)
	}
	return nil
}
