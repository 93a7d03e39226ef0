package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-resolver/framework/http/api"
)

func newTypesCommand(f *flags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the catalog in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), f, true)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			var rows []api.TypeInfo
			for t := range a.Catalog().All() {
				rows = append(rows, api.Describe(t))
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODULE\tTYPE\tTABLE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s.%s\n", r.Module, r.FullName, r.Schema, r.Table)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
