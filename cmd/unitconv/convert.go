package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Spok95/unitconv/internal/service"
)

func newConvertCommand(root *rootOptions) *cobra.Command {
	var (
		category  string
		precision int
		output    = outputText
	)
	cmd := &cobra.Command{
		Use:   "convert <value> <from> <to>",
		Short: "Convert a value between two units of one category",
		Example: `  unitconv convert 10 km mi
  unitconv convert 0 c f -o json
  unitconv convert --category Length 5 Feet Inches
  unitconv convert -- -40 c f`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(strings.ReplaceAll(args[0], ",", "."), 64)
			if err != nil {
				return fmt.Errorf("invalid value %q", args[0])
			}
			conv, err := root.converter(cmd, precision)
			if err != nil {
				return err
			}
			res, err := conv.Convert(cmd.Context(), service.Request{
				Category: category,
				From:     args[1],
				To:       args[2],
				Value:    value,
			})
			if err != nil {
				return err
			}
			return printData(cmd.OutOrStdout(), output, res, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, res.Display)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category name; taken from the <from> unit when empty")
	cmd.Flags().IntVar(&precision, "precision", -1, "digits after the decimal point (default from config)")
	cmd.Flags().VarP(&output, "output", "o", "output format: text|json|yaml")
	return cmd
}
