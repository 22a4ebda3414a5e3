package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Spok95/unitconv/internal/infra/excel"
)

func newBatchCommand(root *rootOptions) *cobra.Command {
	var (
		outPath   string
		precision int
	)
	cmd := &cobra.Command{
		Use:   "batch <in.xlsx>",
		Short: "Convert every row of an Excel file",
		Long: "Reads the first sheet (header row, then category | value | from | to)\n" +
			"and writes a copy with result and error columns.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			conv, err := root.converter(cmd, precision)
			if err != nil {
				return err
			}
			out, sum, err := excel.ConvertBatch(cmd.Context(), conv, data)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "rows: %d, failed: %d, written to %s\n", sum.Rows, sum.Failed, outPath)
			return err
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output .xlsx file")
	cmd.Flags().IntVar(&precision, "precision", -1, "digits after the decimal point (default from config)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
