// Package handlers defines the newsintel CLI commands.
package handlers

import (
	"fmt"
	"os"

	"newsintel/internal/config"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "newsintel",
		Short: "Incremental news clustering and trend detection",
		Long: `Newsintel ingests news articles, groups them into topic clusters with
incremental centroid updates, tracks time-decayed keyword statistics per
cluster, and classifies clusters as new, growing, declining, or stable.

Core workflows:
  • Cycle: fetch, normalize, embed, cluster, and classify in one pass
  • Serve: expose clusters, topics, and trends over a read-only HTTP API
  • Repair: heal stale assignments and duplicate cluster memberships

Examples:
  # Run one full intelligence cycle
  newsintel cycle --query "artificial intelligence"

  # Start the API server
  newsintel serve --port 8080

  # Show the latest trend snapshot
  newsintel trends`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .newsintel.yaml)")

	rootCmd.AddCommand(NewCycleCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewTrendsCmd())
	rootCmd.AddCommand(NewRepairCmd())

	cobra.OnInitialize(initConfig)

	return rootCmd
}

// initConfig reads the config file and environment variables.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		// Running on environment variables and defaults alone is supported.
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
	}
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
