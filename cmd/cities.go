package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func citiesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cities",
		Short: "List cities with bookable fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			cities := a.svc.Catalog().Cities()

			out := cmd.OutOrStdout()
			if a.outputJSON {
				return writeJSON(out, cities)
			}

			writer := newTable(out)
			if !a.outputCompact {
				fmt.Fprintln(writer, "CITY\tFIELDS")
			}
			for _, city := range cities {
				fmt.Fprintf(writer, "%s\t%d\n", city.Name, city.Fields)
			}
			return writer.Flush()
		},
	}

	return cmd
}
