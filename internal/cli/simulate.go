package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aristath/reinsim/internal/config"
	"github.com/aristath/reinsim/internal/di"
	"github.com/aristath/reinsim/internal/domain"
	"github.com/aristath/reinsim/internal/modules/export"
	"github.com/aristath/reinsim/internal/modules/risk"
	"github.com/aristath/reinsim/internal/modules/simulation"
	"github.com/aristath/reinsim/internal/modules/simulation/handlers"
	"github.com/aristath/reinsim/pkg/money"
)

type simulateOptions struct {
	portfolio string
	policies  int
	mean      float64
	std       float64
	years     int
	seed      uint64
	output    string
	format    string
	upload    bool
}

func newSimulateCmd(root *RootOptions) *cobra.Command {
	defaults := simulation.DefaultInputRanges().DefaultConfig(domain.PortfolioLife)
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a loss simulation and print its risk summary",
		Long: "Simulates aggregate annual losses for a Life, Health or Combined book,\n" +
			"prints the risk summary and optionally writes or uploads the annual loss series.",
		Example: "  reinsim simulate --portfolio Combined --policies 5000 --years 20 --seed 42\n" +
			"  reinsim simulate --portfolio Health --output losses.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *uint64
			if cmd.Flags().Changed("seed") {
				seed = &opts.seed
			}
			return runSimulate(cmd, root, opts, seed)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.portfolio, "portfolio", "p", "Life", "portfolio kind (Life, Health, Combined)")
	f.IntVar(&opts.policies, "policies", defaults.PolicyCount, "number of policies")
	f.Float64Var(&opts.mean, "mean", defaults.MeanLoss, "mean loss per policy")
	f.Float64Var(&opts.std, "std", defaults.StdDev, "standard deviation of the loss per policy")
	f.IntVar(&opts.years, "years", defaults.SimulatedYears, "number of simulated years")
	f.Uint64Var(&opts.seed, "seed", 0, "generator seed (default: random, reported in the summary)")
	f.StringVarP(&opts.output, "output", "o", "", "write the export to this file (- for stdout)")
	f.StringVar(&opts.format, "format", string(export.FormatCSV), "export format (csv, json, msgpack)")
	f.BoolVar(&opts.upload, "upload", false, "upload the export to the configured bucket")

	return cmd
}

func runSimulate(cmd *cobra.Command, root *RootOptions, opts *simulateOptions, seed *uint64) error {
	kind, err := domain.ParsePortfolioKind(opts.portfolio)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.upload && !cfg.Export.UploadsEnabled() {
		return export.ErrUploadDisabled
	}

	log := root.newLogger(cmd.ErrOrStderr())
	ctx := cmd.Context()

	container, err := di.Wire(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}
	defer container.Close()

	portfolio := domain.PortfolioConfig{
		Kind: kind,
		LossParams: domain.LossParams{
			PolicyCount:    opts.policies,
			MeanLoss:       opts.mean,
			StdDev:         opts.std,
			SimulatedYears: opts.years,
		},
	}

	run, err := container.SimulationService.Run(ctx, portfolio, seed)
	if err != nil {
		return err
	}

	// Exported data on stdout replaces the summary table
	if opts.output != "-" {
		if err := printSummary(cmd.OutOrStdout(), run); err != nil {
			return err
		}
	}

	if opts.output != "" {
		payload, err := container.Exporter.Encode(run, format)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), opts.output, payload.Data); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
	}

	if opts.upload {
		key, err := container.Exporter.Upload(ctx, run, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Uploaded %s\n", key)
	}

	return nil
}

func printSummary(w io.Writer, run *domain.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run\t%s\n", run.ID)
	fmt.Fprintf(tw, "Portfolio\t%s\n", run.Config.Kind)
	fmt.Fprintf(tw, "Policies\t%d\n", run.Config.PolicyCount)
	fmt.Fprintf(tw, "Simulated years\t%d\n", run.Config.SimulatedYears)
	if run.Seed != nil {
		fmt.Fprintf(tw, "Seed\t%d\n", *run.Seed)
	}
	fmt.Fprintln(tw, "\t")
	if err := writeRiskRows(tw, run.Series, run.Summary); err != nil {
		return err
	}
	return tw.Flush()
}

// writeRiskRows writes the metric tiles and tail metrics of series
func writeRiskRows(tw *tabwriter.Writer, series []float64, summary domain.RiskSummary) error {
	tail, err := risk.Tail(series)
	if err != nil {
		return err
	}

	for _, tile := range handlers.MetricTiles(summary) {
		fmt.Fprintf(tw, "%s\t%s\n", tile.Label, tile.Display)
	}
	fmt.Fprintf(tw, "Min annual loss\t%s\n", money.FormatWhole(tail.Min, "$"))
	fmt.Fprintf(tw, "95th percentile\t%s\n", money.FormatWhole(tail.P95, "$"))
	fmt.Fprintf(tw, "99th percentile\t%s\n", money.FormatWhole(tail.P99, "$"))
	fmt.Fprintf(tw, "99.5%% TVaR\t%s\n", money.FormatWhole(tail.TVaR995, "$"))
	return nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
