package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bertiewooster/polars/pkg/datatype"
)

// NewDTypesCommand creates the dtypes command.
func NewDTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dtypes",
		Short: "List the dtypes frames can carry",
		Long: `List every dtype the generators can draw, with the unit variants
parametrized temporal types accept.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"DType", "Units"})

			all := datatype.All()
			for _, dt := range all {
				units := ""
				if dt.HasUnit() {
					names := make([]string, len(datatype.TemporalUnits))
					for i, u := range datatype.TemporalUnits {
						names[i] = u.String()
					}
					units = strings.Join(names, ", ")
				}
				t.AppendRow(table.Row{dt.String(), units})
			}
			t.Render()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d dtypes)\n", len(all))
		},
	}
}
