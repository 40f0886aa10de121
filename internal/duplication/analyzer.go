package duplication

import (
	"fmt"
	"iter"
	"log/slog"

	"gocda/internal/cpd"
	"gocda/internal/model"
	"gocda/internal/scanner"
)

// FileCounter 统计目录树中某种语言的文件数量。
type FileCounter interface {
	CountFiles(path string, language string) (int64, error)
}

// Config 描述一次分析的目录与语言。
type Config struct {
	Root           string
	SourceDir      string
	DestinationDir string
	Language       string
}

// Analyzer 串联报告解析、聚合与文件计数，产出完整的 DuplicationResult。
type Analyzer struct {
	cfg    Config
	parser *cpd.Parser
	files  FileCounter
	logger *slog.Logger
}

// NewAnalyzer 创建分析器。
func NewAnalyzer(cfg Config, counter scanner.LineCounter, files FileCounter, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	parser, err := cpd.NewParser(cpd.Config{
		SourceDir:      cfg.SourceDir,
		DestinationDir: cfg.DestinationDir,
	}, counter, logger)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		cfg:    cfg,
		parser: parser,
		files:  files,
		logger: logger,
	}, nil
}

// AnalyzeReport 解析报告文件并汇总。
func (a *Analyzer) AnalyzeReport(reportPath string) (model.DuplicationResult, error) {
	a.logger.Debug("analyzing report", "path", reportPath)
	return a.AnalyzeGroups(a.parser.ParseFile(reportPath))
}

// AnalyzeGroups 折叠分组序列并计算汇总比例。
func (a *Analyzer) AnalyzeGroups(groups iter.Seq2[model.DuplicationGroup, error]) (model.DuplicationResult, error) {
	result := model.DuplicationResult{
		Root:           a.cfg.Root,
		SourceDir:      a.cfg.SourceDir,
		DestinationDir: a.cfg.DestinationDir,
		Language:       a.cfg.Language,
	}

	aggregator := NewAggregator()
	if err := aggregator.Collect(groups); err != nil {
		return result, err
	}
	result.Records = aggregator.Records()

	destinationFiles, err := a.files.CountFiles(a.cfg.DestinationDir, a.cfg.Language)
	if err != nil {
		return result, fmt.Errorf("count destination files: %w", err)
	}
	sourceFiles, err := a.files.CountFiles(a.cfg.SourceDir, a.cfg.Language)
	if err != nil {
		return result, fmt.Errorf("count source files: %w", err)
	}

	totals := Summarize(result.Records, sourceFiles, destinationFiles)
	result.SourceFiles = sourceFiles
	result.DestinationFiles = destinationFiles
	result.TotalDestinationRate = totals.DestinationRate
	result.TotalSelfRate = totals.SelfRate

	a.logger.Debug("report aggregated",
		"records", len(result.Records),
		"source_files", sourceFiles,
		"destination_files", destinationFiles,
	)
	return result, nil
}
