package cmd

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"gocda/internal/languages"
)

// newLanguageCmd 创建 language 子命令。
// 命令用于展示已支持的语言、对应的 CPD 语言标识以及文件后缀。
func newLanguageCmd(registry *languages.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "language",
		Short: "展示已支持语言及后缀",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl := table.NewWriter()
			tbl.SetOutputMirror(cmd.OutOrStdout())
			tbl.SetStyle(table.StyleLight)
			tbl.Style().Options.DrawBorder = false
			tbl.Style().Options.SeparateColumns = false
			tbl.Style().Options.SeparateHeader = false

			tbl.AppendHeader(table.Row{"LANGUAGE", "CPD", "EXTENSIONS"})
			for _, item := range registry.Languages() {
				tbl.AppendRow(table.Row{item.Name, item.CPDName, strings.Join(item.Extensions, ", ")})
			}
			tbl.Render()
			return nil
		},
	}
}
