package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Spok95/unitconv/internal/domain/units"
)

func newUnitsCommand() *cobra.Command {
	output := outputText
	cmd := &cobra.Command{
		Use:   "units [category]",
		Short: "List categories and their units",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := units.Catalog()
			if len(args) == 1 {
				c, err := units.ParseCategory(args[0])
				if err != nil {
					return err
				}
				info, err := units.Lookup(c)
				if err != nil {
					return err
				}
				infos = []units.Info{info}
			}
			return printData(cmd.OutOrStdout(), output, infos, func(w io.Writer) error {
				for _, info := range infos {
					names := make([]string, 0, len(info.Units))
					for _, u := range info.Units {
						names = append(names, string(u))
					}
					if _, err := fmt.Fprintf(w, "%s %s: %s\n", info.Icon, info.Category, strings.Join(names, ", ")); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().VarP(&output, "output", "o", "output format: text|json|yaml")
	return cmd
}
