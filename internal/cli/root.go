package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logger  zerolog.Logger
	version = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "proxyrank",
	Short: "Rank sing-box SOCKS5 proxy nodes by latency and download speed",
	Long: `Rank sing-box SOCKS5 proxy nodes by latency and download speed.

  Point proxyrank at a sing-box config and it probes every loopback socks
  inbound through its SOCKS5 port: 10 timed round trips per node, plus an
  optional single-shot download test, then prints a ranked table.

  Quick start:
    proxyrank test config.json
    proxyrank test config.json '^HK' -d 50
    proxyrank watch config.json --every 10m`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelName, _ := cmd.Flags().GetString("log-level")
		verbose, _ := cmd.Flags().GetBool("verbose")

		level, err := zerolog.ParseLevel(levelName)
		if err != nil {
			return fmt.Errorf("invalid log level '%s': %w", levelName, err)
		}
		if verbose {
			level = zerolog.DebugLevel
		}

		// Diagnostics go to stderr; stdout stays clean for the report.
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("proxyrank %s\n", version)
	},
}
