package scanner

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gocda/internal/languages"
	"gocda/internal/model"
)

// CountMode 决定“文件行数”的口径。
type CountMode string

const (
	// CountNonBlank 只统计去掉空白后不为空的行。
	// 只含空格、制表符或 \r 的行同样算空行，不计入；
	// 这比只跳过长度为 0 的行更严格，同一文件的计数可能更小。
	CountNonBlank CountMode = "nonblank"
	// CountAll 统计全部行。
	CountAll CountMode = "all"
	// CountCode 只统计包含代码的行（由语言 FSM 判定）。
	CountCode CountMode = "code"
)

// ParseCountMode 把配置值解析为 CountMode。
func ParseCountMode(value string) (CountMode, error) {
	mode := CountMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case CountNonBlank, CountAll, CountCode:
		return mode, nil
	case "":
		return CountNonBlank, nil
	default:
		return "", fmt.Errorf("unsupported count mode %q, allowed values: nonblank, all, code", value)
	}
}

// Pick 从一组行统计中取出该口径对应的值。
func (m CountMode) Pick(metrics model.LineMetrics) int64 {
	switch m {
	case CountAll:
		return metrics.Total
	case CountCode:
		return metrics.Code
	default:
		return metrics.NonBlank
	}
}

// LineCounter 提供“某个路径的文件有多少行”的查询能力。
type LineCounter interface {
	Lines(path string) int64
}

// CachingCounter 是带缓存的 LineCounter。
// 同一次运行中每个路径只读取一次磁盘；读取失败按 0 行处理并同样缓存。
// 非并发安全，只应在单次分析流程中使用。
type CachingCounter struct {
	registry *languages.Registry
	mode     CountMode
	cache    map[string]int64
	logger   *slog.Logger
}

// NewCachingCounter 创建带缓存的行数统计器。
func NewCachingCounter(registry *languages.Registry, mode CountMode, logger *slog.Logger) *CachingCounter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingCounter{
		registry: registry,
		mode:     mode,
		cache:    make(map[string]int64),
		logger:   logger,
	}
}

// Lines 返回文件行数，结果按路径缓存。
func (c *CachingCounter) Lines(path string) int64 {
	if lines, ok := c.cache[path]; ok {
		return lines
	}

	lines, err := c.countFile(path)
	if err != nil {
		c.logger.Warn("count lines failed, treating file as empty", "path", path, "error", err)
		lines = 0
	}

	c.cache[path] = lines
	return lines
}

// Cached 返回缓存中的路径数量。
func (c *CachingCounter) Cached() int {
	return len(c.cache)
}

func (c *CachingCounter) countFile(path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	analyzer, ok := c.registry.AnalyzerForFile(path)
	if !ok {
		analyzer = languages.PlainText()
	}
	return CountLines(file, analyzer, c.mode)
}

// CountLines 使用语言 FSM 统计 reader 的行数并按口径返回。
func CountLines(reader io.Reader, analyzer languages.Analyzer, mode CountMode) (int64, error) {
	metrics, err := analyzer.Analyze(reader)
	if err != nil {
		return 0, err
	}
	return mode.Pick(metrics), nil
}
