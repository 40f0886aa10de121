// Package languages 维护 gocda 支持的语言目录。
// 每种语言同时提供检测器使用的语言标识、文件后缀以及行统计 FSM。
package languages

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gocda/internal/model"
)

// Analyzer 定义单语言 FSM 分析器接口。
type Analyzer interface {
	// Name 返回语言名称（例如 Swift、Kotlin）。
	Name() string
	// CPDName 返回检测器 --language 参数使用的标识（例如 swift、kotlin）。
	CPDName() string
	// Extensions 返回该语言支持的后缀列表（包含点号，如 .swift）。
	Extensions() []string
	// Analyze 执行流式扫描并输出统计结果。
	Analyze(reader io.Reader) (model.LineMetrics, error)
}

// LanguageDescriptor 用于对外展示语言及后缀信息。
type LanguageDescriptor struct {
	Name       string
	CPDName    string
	Extensions []string
}

// Registry 管理语言分析器注册与后缀映射。
type Registry struct {
	analyzers      []Analyzer
	analyzerByExt  map[string]Analyzer
	analyzerByName map[string]Analyzer
}

// NewRegistry 创建并注册所有内置语言分析器。
func NewRegistry() *Registry {
	registry := &Registry{
		analyzerByExt:  make(map[string]Analyzer),
		analyzerByName: make(map[string]Analyzer),
	}

	for _, language := range builtinLanguages() {
		registry.analyzers = append(registry.analyzers, language)

		for _, ext := range language.Extensions() {
			registry.analyzerByExt[strings.ToLower(ext)] = language
		}

		registry.analyzerByName[strings.ToLower(language.Name())] = language
		registry.analyzerByName[language.CPDName()] = language
		for _, alias := range language.aliases {
			registry.analyzerByName[alias] = language
		}
	}

	return registry
}

// Lookup 根据语言名、检测器标识或别名查找分析器，大小写不敏感。
func (r *Registry) Lookup(name string) (Analyzer, bool) {
	analyzer, ok := r.analyzerByName[strings.ToLower(strings.TrimSpace(name))]
	return analyzer, ok
}

// AnalyzerForFile 根据文件后缀查找分析器。
func (r *Registry) AnalyzerForFile(path string) (Analyzer, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	analyzer, ok := r.analyzerByExt[ext]
	return analyzer, ok
}

// Languages 返回已注册语言清单。
func (r *Registry) Languages() []LanguageDescriptor {
	result := make([]LanguageDescriptor, 0, len(r.analyzers))
	for _, analyzer := range r.analyzers {
		extensions := append([]string(nil), analyzer.Extensions()...)
		sort.Strings(extensions)
		result = append(result, LanguageDescriptor{
			Name:       analyzer.Name(),
			CPDName:    analyzer.CPDName(),
			Extensions: extensions,
		})
	}

	sort.Slice(result, func(i int, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// ExtensionsForLanguage 返回指定语言对应的全部后缀。
func (r *Registry) ExtensionsForLanguage(language string) []string {
	analyzer, ok := r.Lookup(language)
	if !ok {
		return nil
	}

	extensions := append([]string(nil), analyzer.Extensions()...)
	sort.Strings(extensions)
	return extensions
}

// PlainText 返回不识别任何注释语法的分析器，用于没有注册后缀的文件。
// 该分析器下每个非空行都计为 code。
func PlainText() Analyzer {
	return &Language{name: "Text", cpdName: "text"}
}
