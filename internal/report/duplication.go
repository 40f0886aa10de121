package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"gocda/internal/model"
)

// 比例着色阈值。
const (
	rateHigh   = 0.5
	rateMedium = 0.2
)

// RecordDocument 是机器可读输出中的单条记录，附带计算后的两个比例。
type RecordDocument struct {
	Source          string  `json:"source" yaml:"source"`
	SourceLines     int64   `json:"source_lines" yaml:"source_lines"`
	Destination     string  `json:"destination" yaml:"destination"`
	DestLines       int64   `json:"destination_lines" yaml:"destination_lines"`
	DuplicatedLines int64   `json:"duplicated_lines" yaml:"duplicated_lines"`
	SelfRate        float64 `json:"self_rate" yaml:"self_rate"`
	DestinationRate float64 `json:"destination_rate" yaml:"destination_rate"`
}

// DuplicationDocument 是 analyze/parse 的机器可读输出。
type DuplicationDocument struct {
	Root                 string           `json:"root,omitempty" yaml:"root,omitempty"`
	SourceDir            string           `json:"source_dir" yaml:"source_dir"`
	DestinationDir       string           `json:"destination_dir" yaml:"destination_dir"`
	Language             string           `json:"language" yaml:"language"`
	Results              int              `json:"results" yaml:"results"`
	Records              []RecordDocument `json:"records" yaml:"records"`
	SourceFiles          int64            `json:"source_files" yaml:"source_files"`
	DestinationFiles     int64            `json:"destination_files" yaml:"destination_files"`
	TotalDestinationRate float64          `json:"total_destination_rate" yaml:"total_destination_rate"`
	TotalSelfRate        float64          `json:"total_self_rate" yaml:"total_self_rate"`
}

// NewDuplicationDocument 把分析结果转换为输出文档，记录顺序保持不变。
func NewDuplicationDocument(result model.DuplicationResult) DuplicationDocument {
	records := make([]RecordDocument, 0, len(result.Records))
	for _, record := range result.Records {
		records = append(records, RecordDocument{
			Source:          record.Source.Path,
			SourceLines:     record.Source.Lines,
			Destination:     record.PrimaryDestination.Path,
			DestLines:       record.PrimaryDestination.Lines,
			DuplicatedLines: record.DuplicatedLines,
			SelfRate:        record.SelfRate(),
			DestinationRate: record.DestinationRate(),
		})
	}

	return DuplicationDocument{
		Root:                 result.Root,
		SourceDir:            result.SourceDir,
		DestinationDir:       result.DestinationDir,
		Language:             result.Language,
		Results:              len(records),
		Records:              records,
		SourceFiles:          result.SourceFiles,
		DestinationFiles:     result.DestinationFiles,
		TotalDestinationRate: result.TotalDestinationRate,
		TotalSelfRate:        result.TotalSelfRate,
	}
}

// PrintDuplication 按 format 输出分析结果。
func PrintDuplication(writer io.Writer, format Format, result model.DuplicationResult, opts Options) error {
	if format == FormatTable {
		return PrintDuplicationTable(writer, result, opts)
	}
	return PrintData(writer, format, NewDuplicationDocument(result))
}

// PrintDuplicationTable 使用表格展示分析结果：
// 结果数量、每个源文件一行，以及两条汇总比例。
func PrintDuplicationTable(writer io.Writer, result model.DuplicationResult, opts Options) error {
	palette := newPalette(opts.Color)

	if _, err := fmt.Fprintf(writer, "Found %d results:\n", len(result.Records)); err != nil {
		return err
	}

	if len(result.Records) > 0 {
		tbl := newPlainTable(writer)
		tbl.AppendHeader(table.Row{"SOURCE", "DESTINATION", "LINES", "SELF RATE", "DUPLICATED", "DEST RATE"})
		for _, record := range result.Records {
			tbl.AppendRow(table.Row{
				record.Source.Path,
				record.PrimaryDestination.Path,
				humanize.Comma(record.Source.Lines),
				palette.rate(record.SelfRate()),
				humanize.Comma(record.DuplicatedLines),
				palette.rate(record.DestinationRate()),
			})
		}
		tbl.Render()
	}

	if _, err := fmt.Fprintf(writer, "\nTotal rate: %s\n", palette.rate(result.TotalDestinationRate)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Total rate of self: %s\n", palette.rate(result.TotalSelfRate))
	return err
}

// palette 按严重程度给比例着色。
type palette struct {
	high   *color.Color
	medium *color.Color
	low    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		high:   color.New(color.FgRed, color.Bold),
		medium: color.New(color.FgYellow),
		low:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.high, p.medium, p.low} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// rate 把 [0, 1] 的比例格式化为两位小数百分比。
func (p palette) rate(value float64) string {
	formatted := FormatPercent(value)
	switch {
	case value >= rateHigh:
		return p.high.Sprint(formatted)
	case value >= rateMedium:
		return p.medium.Sprint(formatted)
	default:
		return p.low.Sprint(formatted)
	}
}

// FormatPercent 把比例格式化为百分比，例如 0.3 -> "30.00%"。
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value*100)
}
