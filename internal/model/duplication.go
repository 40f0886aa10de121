package model

// FileLineInfo 标识一个具体文件及其在磁盘上的总行数。
// Lines 是整个文件的行数，不是重复片段的行数。
type FileLineInfo struct {
	Path  string `json:"path" yaml:"path"`
	Lines int64  `json:"lines" yaml:"lines"`
}

// IsEmpty 判断该文件信息是否尚未被赋值。
func (f FileLineInfo) IsEmpty() bool {
	return f.Path == ""
}

// DuplicationGroup 表示检测器报告中的一次克隆实例。
//
// 约束说明：
// - DeclaredLines 来自分组头部，是检测器声明的重复行数
// - Source 最多设置一次
// - Destinations 按报告中的出现顺序排列
type DuplicationGroup struct {
	DeclaredLines int64          `json:"declared_lines" yaml:"declared_lines"`
	Source        FileLineInfo   `json:"source" yaml:"source"`
	Destinations  []FileLineInfo `json:"destinations" yaml:"destinations"`
}

// HasSource 判断分组是否已经识别到源文件。
func (g *DuplicationGroup) HasSource() bool {
	return !g.Source.IsEmpty()
}

// AddDestination 追加一个目标文件出现位置。
func (g *DuplicationGroup) AddDestination(dest FileLineInfo) {
	g.Destinations = append(g.Destinations, dest)
}

// ClearDestinations 清空已收集的目标文件。
// 分组中出现既不属于源目录也不属于目标目录的文件时调用。
func (g *DuplicationGroup) ClearDestinations() {
	g.Destinations = nil
}

// AggregatedRecord 表示同一个源文件在全部分组中的累计结果。
// PrimaryDestination 在首次插入后固定，DuplicatedLines 只增不减。
type AggregatedRecord struct {
	Source             FileLineInfo `json:"source" yaml:"source"`
	PrimaryDestination FileLineInfo `json:"primary_destination" yaml:"primary_destination"`
	DuplicatedLines    int64        `json:"duplicated_lines" yaml:"duplicated_lines"`
}

// SelfRate 返回源文件自身被重复的比例，结果截断到 [0, 1]。
func (r AggregatedRecord) SelfRate() float64 {
	return clampedRatio(r.DuplicatedLines, r.Source.Lines)
}

// DestinationRate 返回首个目标文件被重复的比例，结果截断到 [0, 1]。
// 没有目标文件时为 0。
//
// 注意：分母只使用首个目标文件的行数，而分子累加了所有分组，
// 源文件与多个不同目标文件重复时该值偏高。
func (r AggregatedRecord) DestinationRate() float64 {
	if r.PrimaryDestination.IsEmpty() {
		return 0
	}
	return clampedRatio(r.DuplicatedLines, r.PrimaryDestination.Lines)
}

// clampedRatio 计算 numerator/denominator 并截断到 [0, 1]。
// 分母为 0 而分子大于 0 时视为完全重复。
func clampedRatio(numerator int64, denominator int64) float64 {
	if numerator <= 0 {
		return 0
	}
	if denominator <= 0 {
		return 1
	}

	ratio := float64(numerator) / float64(denominator)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// DuplicationResult 是 analyze/parse 命令的完整输出模型。
type DuplicationResult struct {
	Root                 string             `json:"root,omitempty" yaml:"root,omitempty"`
	SourceDir            string             `json:"source_dir" yaml:"source_dir"`
	DestinationDir       string             `json:"destination_dir" yaml:"destination_dir"`
	Language             string             `json:"language" yaml:"language"`
	Records              []AggregatedRecord `json:"records" yaml:"records"`
	SourceFiles          int64              `json:"source_files" yaml:"source_files"`
	DestinationFiles     int64              `json:"destination_files" yaml:"destination_files"`
	TotalDestinationRate float64            `json:"total_destination_rate" yaml:"total_destination_rate"`
	TotalSelfRate        float64            `json:"total_self_rate" yaml:"total_self_rate"`
}
