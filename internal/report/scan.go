package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gocda/internal/model"
)

// PrintScan 按 format 输出扫描结果。
func PrintScan(writer io.Writer, format Format, result model.ScanResult) error {
	if format == FormatTable {
		return PrintScanTable(writer, result)
	}
	return PrintData(writer, format, result)
}

// PrintScanTable 使用表格展示扫描结果。
func PrintScanTable(writer io.Writer, result model.ScanResult) error {
	if _, err := fmt.Fprintf(writer, "SCANNED PATH  %s\n\n", result.ScannedPath); err != nil {
		return err
	}

	files := newPlainTable(writer)
	files.AppendHeader(table.Row{"FILE", "LANGUAGE", "TOTAL", "CODE", "COMMENT", "BLANK"})
	for _, item := range result.Files {
		files.AppendRow(table.Row{
			item.Path,
			item.Language,
			humanize.Comma(item.Metrics.Total),
			humanize.Comma(item.Metrics.Code),
			humanize.Comma(item.Metrics.Comment),
			humanize.Comma(item.Metrics.Blank),
		})
	}
	files.Render()

	if _, err := fmt.Fprintln(writer); err != nil {
		return err
	}

	languages := newPlainTable(writer)
	languages.AppendHeader(table.Row{"LANGUAGE", "FILES", "TOTAL", "CODE", "COMMENT", "BLANK"})
	for _, item := range result.Languages {
		languages.AppendRow(table.Row{
			item.Language,
			humanize.Comma(item.Files),
			humanize.Comma(item.Metrics.Total),
			humanize.Comma(item.Metrics.Code),
			humanize.Comma(item.Metrics.Comment),
			humanize.Comma(item.Metrics.Blank),
		})
	}
	languages.AppendFooter(table.Row{
		"TOTAL",
		humanize.Comma(result.Total.Files),
		humanize.Comma(result.Total.Total),
		humanize.Comma(result.Total.Code),
		humanize.Comma(result.Total.Comment),
		humanize.Comma(result.Total.Blank),
	})
	languages.Render()

	if len(result.Errors) > 0 {
		if _, err := fmt.Fprintln(writer); err != nil {
			return err
		}

		failures := newPlainTable(writer)
		failures.AppendHeader(table.Row{"ERROR FILE", "MESSAGE"})
		for _, item := range result.Errors {
			failures.AppendRow(table.Row{item.Path, item.Error})
		}
		failures.Render()
	}
	return nil
}

// newPlainTable 创建无边框的表格，数字列右对齐。
func newPlainTable(writer io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(writer)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateHeader = false
	tbl.Style().Options.SeparateFooter = false
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return tbl
}
