package cmd

import (
	"github.com/spf13/cobra"

	"gocda/internal/report"
)

// newSchemaCmd 创建 schema 子命令，输出 analyze/parse JSON 结果的 JSON Schema。
func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "输出 JSON 结果的 JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := report.DuplicationSchema()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}
}
