package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"proxyrank/internal/inventory"
	"proxyrank/internal/measure"
	"proxyrank/internal/report"
	"proxyrank/internal/tui"
)

var testCmd = &cobra.Command{
	Use:   "test <config.json> [pattern...]",
	Short: "Probe and rank socks nodes from a sing-box config",
	Long: `Probe every loopback socks inbound in a sing-box config and rank the nodes.

Each node gets 10 timed round trips through its SOCKS5 port; pass --download-mb
to add a single-shot download test, which switches the ranking to download
speed. Extra arguments are regex patterns that the node tag must all match.

Nodes are probed one at a time. With latency-only runs --workers can fan the
probes out; download runs always stay sequential so transfers don't contend
for bandwidth.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		downloadMB, _ := cmd.Flags().GetUint("download-mb")
		workers, _ := cmd.Flags().GetInt64("workers")
		useTUI, _ := cmd.Flags().GetBool("tui")

		if downloadMB > measure.MaxDownloadMB {
			return fmt.Errorf("download size %d MB exceeds the %d MB limit", downloadMB, measure.MaxDownloadMB)
		}
		if downloadMB > 0 && cmd.Flags().Changed("workers") {
			logger.Warn().Msg("--workers is ignored when --download-mb is set; download runs are sequential")
		}

		endpoints, err := loadEndpoints(args[0], args[1:])
		if err != nil {
			return err
		}

		eval := measure.NewEvaluator(
			measure.NewHTTPSampler(logger),
			measure.Options{DownloadMB: downloadMB, Workers: workers},
			logger,
		)

		if useTUI {
			return tui.Run(eval, endpoints, downloadMB)
		}

		runOnce(eval, endpoints, downloadMB)
		return nil
	},
}

// loadEndpoints resolves the runnable endpoint set: compile filters first so
// a bad pattern fails before any file I/O, then load and filter.
func loadEndpoints(path string, patterns []string) ([]inventory.Endpoint, error) {
	filters, err := inventory.CompileFilters(patterns)
	if err != nil {
		return nil, err
	}
	endpoints, err := inventory.Load(path)
	if err != nil {
		return nil, err
	}
	return inventory.Filter(endpoints, filters)
}

// runOnce performs one full evaluation and prints the ranked report.
func runOnce(eval *measure.Evaluator, endpoints []inventory.Endpoint, downloadMB uint) {
	r := report.New(os.Stdout)
	r.RunHeader(len(endpoints), downloadMB)

	results := eval.EvaluateAll(context.Background(), endpoints, func(result measure.NodeResult, current, total int) {
		r.Progress(result, current, total)
	})

	measure.Rank(results, eval.SpeedEnabled())
	r.Table(results, downloadMB)
	r.Summary(results, downloadMB)
}

func init() {
	testCmd.Flags().UintP("download-mb", "d", 0, "download test size in MB (enables speed test, max 1024)")
	testCmd.Flags().Int64P("workers", "w", 1, "concurrent workers for latency-only runs")
	testCmd.Flags().Bool("tui", false, "show a live view while testing")

	rootCmd.AddCommand(testCmd)
}
