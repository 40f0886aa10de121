// Package scanner 提供源码目录树扫描能力。
// 该层负责目录遍历、语言过滤、排除规则和结果汇总，不负责语法解析细节。
// 遍历是单线程的深度优先顺序（同一目录内按文件名字典序）。
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"gocda/internal/languages"
	"gocda/internal/model"
)

// ErrUnknownLanguage 表示语言过滤条件无法在语言目录中找到。
var ErrUnknownLanguage = errors.New("unknown language")

// Service 是扫描服务对象。
type Service struct {
	registry *languages.Registry
	excludes []string
	logger   *slog.Logger
}

// NewService 创建扫描服务。
// excludes 是相对扫描根目录的 doublestar 模式，例如 **/Pods/**。
func NewService(registry *languages.Registry, excludes []string, logger *slog.Logger) (*Service, error) {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		registry: registry,
		excludes: excludes,
		logger:   logger,
	}, nil
}

// scanTask 表示一个待分析文件任务。
type scanTask struct {
	absolutePath string
	displayPath  string
	analyzer     languages.Analyzer
}

// ScanPath 扫描目录或单文件。
// language 为空时统计所有已注册语言，否则只统计该语言的文件。
func (s *Service) ScanPath(targetPath string, language string) (model.ScanResult, error) {
	var result model.ScanResult

	absoluteTarget, info, err := resolveTarget(targetPath)
	if err != nil {
		return result, err
	}
	result.ScannedPath = absoluteTarget

	filter, err := s.languageFilter(language)
	if err != nil {
		return result, err
	}

	var tasks []scanTask
	if info.IsDir() {
		tasks, err = s.collectDirectoryTasks(absoluteTarget, filter)
	} else {
		tasks, err = s.collectSingleFileTask(absoluteTarget, filter)
	}
	if err != nil {
		return result, err
	}

	result.Files = make([]model.FileMetrics, 0, len(tasks))
	result.Errors = make([]model.ScanError, 0)

	for _, task := range tasks {
		metrics, analyzeErr := analyzeFile(task.absolutePath, task.analyzer)
		if analyzeErr != nil {
			s.logger.Debug("scan file failed", "path", task.absolutePath, "error", analyzeErr)
			result.Errors = append(result.Errors, model.ScanError{
				Path:  task.displayPath,
				Error: analyzeErr.Error(),
			})
			continue
		}

		result.Files = append(result.Files, model.FileMetrics{
			Path:     task.displayPath,
			Language: task.analyzer.Name(),
			Metrics:  metrics,
		})
	}

	s.buildSummaries(&result)
	return result, nil
}

// CountFiles 统计目录树中属于指定语言的文件数量，不读取文件内容。
func (s *Service) CountFiles(targetPath string, language string) (int64, error) {
	absoluteTarget, info, err := resolveTarget(targetPath)
	if err != nil {
		return 0, err
	}

	filter, err := s.languageFilter(language)
	if err != nil {
		return 0, err
	}

	if !info.IsDir() {
		if _, ok := s.analyzerFor(absoluteTarget, filter); ok {
			return 1, nil
		}
		return 0, nil
	}

	tasks, err := s.collectDirectoryTasks(absoluteTarget, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(tasks)), nil
}

// resolveTarget 把用户输入转换为绝对路径并确认其存在。
func resolveTarget(targetPath string) (string, os.FileInfo, error) {
	trimmedPath := strings.TrimSpace(targetPath)
	if trimmedPath == "" {
		return "", nil, errors.New("scan path is empty")
	}

	absoluteTarget, err := filepath.Abs(trimmedPath)
	if err != nil {
		return "", nil, fmt.Errorf("resolve absolute path: %w", err)
	}

	info, err := os.Stat(absoluteTarget)
	if err != nil {
		return "", nil, fmt.Errorf("stat path: %w", err)
	}
	return absoluteTarget, info, nil
}

// languageFilter 解析语言过滤条件，空字符串表示不过滤。
func (s *Service) languageFilter(language string) (languages.Analyzer, error) {
	if strings.TrimSpace(language) == "" {
		return nil, nil
	}

	analyzer, ok := s.registry.Lookup(language)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
	}
	return analyzer, nil
}

// analyzerFor 根据后缀和语言过滤条件决定文件是否参与统计。
func (s *Service) analyzerFor(path string, filter languages.Analyzer) (languages.Analyzer, bool) {
	analyzer, ok := s.registry.AnalyzerForFile(path)
	if !ok {
		return nil, false
	}
	if filter != nil && analyzer.CPDName() != filter.CPDName() {
		return nil, false
	}
	return analyzer, true
}

// collectDirectoryTasks 遍历目录并收集可识别语言文件。
// WalkDir 保证同一目录内按字典序深度优先访问。
func (s *Service) collectDirectoryTasks(root string, filter languages.Analyzer) ([]scanTask, error) {
	var tasks []scanTask

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relativePath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relativePath = path
		}
		relativePath = filepath.ToSlash(relativePath)

		if relativePath != "." && s.excluded(relativePath) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			return nil
		}

		analyzer, ok := s.analyzerFor(path, filter)
		if !ok {
			return nil
		}

		tasks = append(tasks, scanTask{
			absolutePath: path,
			displayPath:  relativePath,
			analyzer:     analyzer,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return tasks, nil
}

// collectSingleFileTask 在用户给定单文件路径时创建任务。
func (s *Service) collectSingleFileTask(filePath string, filter languages.Analyzer) ([]scanTask, error) {
	analyzer, ok := s.analyzerFor(filePath, filter)
	if !ok {
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filePath))
	}

	return []scanTask{{
		absolutePath: filePath,
		displayPath:  filepath.Base(filePath),
		analyzer:     analyzer,
	}}, nil
}

// excluded 判断相对路径是否命中任一排除模式。
func (s *Service) excluded(relativePath string) bool {
	for _, pattern := range s.excludes {
		if ok, _ := doublestar.Match(pattern, relativePath); ok {
			return true
		}
	}
	return false
}

// analyzeFile 打开文件并交给语言 FSM 统计。
func analyzeFile(path string, analyzer languages.Analyzer) (model.LineMetrics, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.LineMetrics{}, err
	}

	metrics, analyzeErr := analyzer.Analyze(file)
	closeErr := file.Close()
	if analyzeErr != nil {
		return metrics, analyzeErr
	}
	if closeErr != nil {
		return metrics, closeErr
	}
	return metrics, nil
}

// buildSummaries 计算语言级汇总和总计信息。
// Files 保留遍历顺序，只对语言汇总和错误列表排序。
func (s *Service) buildSummaries(result *model.ScanResult) {
	sort.Slice(result.Errors, func(i int, j int) bool {
		return result.Errors[i].Path < result.Errors[j].Path
	})

	byLanguage := make(map[string]*model.LanguageMetrics)
	result.Total = model.TotalMetrics{}

	for _, item := range result.Files {
		result.Total.AddFileMetrics(item.Metrics)

		summary, ok := byLanguage[item.Language]
		if !ok {
			summary = &model.LanguageMetrics{
				Language:   item.Language,
				Extensions: s.registry.ExtensionsForLanguage(item.Language),
			}
			byLanguage[item.Language] = summary
		}

		summary.Files++
		summary.Metrics.Add(item.Metrics)
	}

	result.Languages = make([]model.LanguageMetrics, 0, len(byLanguage))
	for _, item := range byLanguage {
		result.Languages = append(result.Languages, *item)
	}

	sort.Slice(result.Languages, func(i int, j int) bool {
		return result.Languages[i].Language < result.Languages[j].Language
	})
}
