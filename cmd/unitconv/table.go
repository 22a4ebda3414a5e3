package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Spok95/unitconv/internal/domain/units"
	"github.com/Spok95/unitconv/internal/infra/excel"
	"github.com/Spok95/unitconv/internal/service"
)

func newTableCommand(root *rootOptions) *cobra.Command {
	var (
		value     float64
		outPath   string
		precision int
	)
	cmd := &cobra.Command{
		Use:   "table <category>",
		Short: "Conversion table of every unit pair in a category",
		Long: "Builds the matrix of conversions for every (from, to) pair of a category.\n" +
			"With --out the table is written to an .xlsx file, otherwise printed.",
		Example: `  unitconv table Length
  unitconv table Weight --value 2.5 --out weight.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := root.converter(cmd, precision)
			if err != nil {
				return err
			}
			t, err := conv.Table(cmd.Context(), args[0], value)
			if err != nil {
				return err
			}
			if outPath == "" {
				return printTable(cmd.OutOrStdout(), conv, t)
			}

			data, err := excel.WriteTable(t, conv.Precision())
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d units written to %s\n", t.Category, len(t.Units), outPath)
			return err
		},
	}
	cmd.Flags().Float64Var(&value, "value", 1, "value to convert in every cell")
	cmd.Flags().StringVar(&outPath, "out", "", "write an .xlsx file instead of printing")
	cmd.Flags().IntVar(&precision, "precision", -1, "digits after the decimal point (default from config)")
	return cmd
}

// printTable строки - from, колонки - to.
func printTable(w io.Writer, conv *service.Converter, t units.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s %s\t", t.Category.Icon(), t.Category)
	for _, u := range t.Units {
		fmt.Fprintf(tw, "%s\t", u)
	}
	fmt.Fprintln(tw)
	for i, from := range t.Units {
		fmt.Fprintf(tw, "%s %s\t", conv.Format(t.Value), from)
		for j := range t.Units {
			fmt.Fprintf(tw, "%s\t", conv.Format(t.Cells[i][j]))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
