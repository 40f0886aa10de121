// Package model 定义 gocda 的核心数据模型。
// 这些结构会被扫描器、报告解析、聚合层、输出层和命令层共同使用。
package model

// LineMetrics 表示一组行级统计值。
//
// 注意：
// - Total 表示总行数（每行计 1）
// - Code/Comment 可以在同一行同时 +1（例如: x := 1 // note）
// - Blank 仅用于既不是代码也不是注释的空白行
// - NonBlank 按原始文本判断，只要去掉空白后不为空就 +1
type LineMetrics struct {
	Total    int64 `json:"total" yaml:"total"`
	Code     int64 `json:"code" yaml:"code"`
	Comment  int64 `json:"comment" yaml:"comment"`
	Blank    int64 `json:"blank" yaml:"blank"`
	NonBlank int64 `json:"non_blank" yaml:"non_blank"`
}

// Add 将另一个统计结果叠加到当前对象。
func (m *LineMetrics) Add(other LineMetrics) {
	m.Total += other.Total
	m.Code += other.Code
	m.Comment += other.Comment
	m.Blank += other.Blank
	m.NonBlank += other.NonBlank
}

// FileMetrics 表示单文件扫描结果。
type FileMetrics struct {
	Path     string      `json:"path" yaml:"path"`
	Language string      `json:"language" yaml:"language"`
	Metrics  LineMetrics `json:"metrics" yaml:"metrics"`
}

// LanguageMetrics 表示某个语言的聚合结果。
type LanguageMetrics struct {
	Language   string      `json:"language" yaml:"language"`
	Extensions []string    `json:"extensions" yaml:"extensions"`
	Files      int64       `json:"files" yaml:"files"`
	Metrics    LineMetrics `json:"metrics" yaml:"metrics"`
}

// ScanError 记录单文件扫描失败信息。
// 单个文件失败不阻断整棵目录树的扫描。
type ScanError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// TotalMetrics 表示项目级总计信息。
// 在 LineMetrics 基础上额外增加 Files 字段，
// 用于表达“本次扫描统计到了多少个有效源码文件”。
type TotalMetrics struct {
	Files       int64 `json:"files" yaml:"files"`
	LineMetrics `yaml:",inline"`
}

// AddFileMetrics 累加一个文件的统计值到项目总计中。
func (m *TotalMetrics) AddFileMetrics(other LineMetrics) {
	m.Files++
	m.LineMetrics.Add(other)
}

// ScanResult 是 scan 命令的完整输出模型。
// 包含文件级明细、语言级汇总、全局总计和错误列表。
// Files 保持目录深度优先遍历的顺序。
type ScanResult struct {
	ScannedPath string            `json:"scanned_path" yaml:"scanned_path"`
	Files       []FileMetrics     `json:"files" yaml:"files"`
	Languages   []LanguageMetrics `json:"languages" yaml:"languages"`
	Total       TotalMetrics      `json:"total" yaml:"total"`
	Errors      []ScanError       `json:"errors" yaml:"errors"`
}
