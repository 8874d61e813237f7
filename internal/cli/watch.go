package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"proxyrank/internal/measure"
	"proxyrank/internal/schedule"
)

var watchCmd = &cobra.Command{
	Use:   "watch <config.json> [pattern...]",
	Short: "Re-run the node tests on a fixed interval",
	Long: `Re-run the node tests on a fixed interval until interrupted.

The config is re-read every cycle, so nodes added or removed from the sing-box
config are picked up without restarting. Results are printed per cycle and
never persisted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		downloadMB, _ := cmd.Flags().GetUint("download-mb")
		workers, _ := cmd.Flags().GetInt64("workers")
		every, _ := cmd.Flags().GetDuration("every")

		if downloadMB > measure.MaxDownloadMB {
			return fmt.Errorf("download size %d MB exceeds the %d MB limit", downloadMB, measure.MaxDownloadMB)
		}
		if every <= 0 {
			return fmt.Errorf("interval must be positive, got %s", every)
		}

		// Validate the config and the patterns up front so a typo fails
		// immediately rather than on the first cycle.
		if _, err := loadEndpoints(args[0], args[1:]); err != nil {
			return err
		}

		sched, err := schedule.New(logger)
		if err != nil {
			return err
		}

		task := func() {
			endpoints, err := loadEndpoints(args[0], args[1:])
			if err != nil {
				logger.Error().Err(err).Msg("skipping cycle")
				return
			}
			eval := measure.NewEvaluator(
				measure.NewHTTPSampler(logger),
				measure.Options{DownloadMB: downloadMB, Workers: workers},
				logger,
			)
			runOnce(eval, endpoints, downloadMB)
		}

		if err := sched.Start(every, task); err != nil {
			return err
		}

		// Interrupts land between cycles; collected output is already
		// printed, so stopping here loses nothing.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		return sched.Stop()
	},
}

func init() {
	watchCmd.Flags().UintP("download-mb", "d", 0, "download test size in MB (enables speed test, max 1024)")
	watchCmd.Flags().Int64P("workers", "w", 1, "concurrent workers for latency-only runs")
	watchCmd.Flags().Duration("every", 10*time.Minute, "interval between test cycles")

	rootCmd.AddCommand(watchCmd)
}
