package cmd

import (
	"fmt"

	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/KaramelBytes/histx/internal/utils"
	"github.com/spf13/cobra"
)

var (
	descOutputPath string
	descSampleRows int
	descUseSample  bool
)

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Summarize a dataset: field classification, statistics and preview",
	Long: `Summarize a CSV/TSV/XLSX file (or the bundled sample when no file is given):
which fields are numeric or categorical, their basic statistics and the first rows.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		res, err := loadDataset(c, args, descUseSample)
		if err != nil {
			return err
		}
		rows := descSampleRows
		if !cmd.Flags().Changed("sample-rows") {
			rows = c.PreviewRows
		}
		md := dataset.Summarize(res.Dataset, rows).Markdown()

		if descOutputPath != "" {
			if err := utils.SafeWriteFile(descOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", descOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of preview rows to include")
	describeCmd.Flags().BoolVar(&descUseSample, "sample", false, "describe the bundled sample dataset")
}
