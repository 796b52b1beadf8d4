package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aristath/reinsim/internal/modules/simulation"
)

func newKindsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List portfolio kinds and the accepted input ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := simulation.Kinds()
			ranges := simulation.DefaultInputRanges()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"kinds":  kinds,
					"ranges": ranges,
				})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tMEAN x\tSTD DEV x\tDESCRIPTION")
			for _, k := range kinds {
				fmt.Fprintf(tw, "%s\t%.4g\t%.4g\t%s\n", k.Name, k.MeanFactor, k.StdDevFactor, k.Description)
			}
			fmt.Fprintln(tw, "\t\t\t")
			fmt.Fprintln(tw, "PARAMETER\tMIN\tMAX\tDEFAULT")
			for _, row := range []struct {
				name string
				r    simulation.ParameterRange
			}{
				{"policies", ranges.PolicyCount},
				{"mean", ranges.MeanLoss},
				{"std", ranges.StdDev},
				{"years", ranges.SimulatedYears},
			} {
				fmt.Fprintf(tw, "%s\t%g\t%g\t%g\n", row.name, row.r.Min, row.r.Max, row.r.Default)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
