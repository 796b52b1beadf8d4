package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aristath/reinsim/internal/modules/export"
	"github.com/aristath/reinsim/internal/modules/risk"
)

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <file.csv>",
		Short: "Print the risk summary of an exported annual loss series",
		Long: "Reads a CSV written by \"simulate --output\" or downloaded from the export\n" +
			"endpoint and prints the same risk summary the simulation produced.",
		Example: "  reinsim summarize losses.csv\n" +
			"  reinsim simulate --output - | reinsim summarize -",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, args[0])
		},
	}
}

func runSummarize(cmd *cobra.Command, path string) error {
	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	series, err := export.ReadCSV(in)
	if err != nil {
		return err
	}
	summary, err := risk.Summarize(series)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Simulated years\t%d\n", len(series))
	fmt.Fprintln(tw, "\t")
	if err := writeRiskRows(tw, series, summary); err != nil {
		return err
	}
	return tw.Flush()
}
