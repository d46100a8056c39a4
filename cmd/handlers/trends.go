package handlers

import (
	"fmt"

	"newsintel/internal/config"
	"newsintel/internal/core"
	"newsintel/internal/pipeline"

	"github.com/spf13/cobra"
)

// NewTrendsCmd creates the trends command, which prints trend snapshots.
func NewTrendsCmd() *cobra.Command {
	var timestamp string

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show a trend snapshot",
		Long: `Show a trend snapshot.

Without flags the latest snapshot is shown. Pass --at with a snapshot
timestamp (see 'newsintel trends --list') to show a historical one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _ := cmd.Flags().GetBool("list")
			return runTrends(timestamp, list)
		},
	}

	cmd.Flags().StringVar(&timestamp, "at", "", "snapshot timestamp to show (default: latest)")
	cmd.Flags().Bool("list", false, "list available snapshot timestamps")

	return cmd
}

func runTrends(timestamp string, list bool) error {
	cfg := config.Get()

	comps, err := pipeline.OpenComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.Close()

	if list {
		timestamps := comps.Trends.ListTimestamps()
		if len(timestamps) == 0 {
			fmt.Println("No trend snapshots yet. Run 'newsintel cycle' first.")
			return nil
		}
		for _, ts := range timestamps {
			fmt.Println(ts)
		}
		return nil
	}

	var snapshot *core.TrendSnapshot
	var ok bool
	if timestamp != "" {
		snapshot, ok = comps.Trends.Load(timestamp)
		if !ok {
			return fmt.Errorf("no snapshot at %s", timestamp)
		}
	} else {
		snapshot, ok = comps.Trends.Latest()
		if !ok {
			fmt.Println("No trend snapshots yet. Run 'newsintel cycle' first.")
			return nil
		}
	}

	printSnapshot(snapshot)
	return nil
}

func printSnapshot(s *core.TrendSnapshot) {
	fmt.Printf("Snapshot %s\n", s.Timestamp)
	fmt.Printf("  Total clusters: %d (stable: %d)\n\n", s.TotalClusters, s.StableCount)

	printTrendList("Growing", s.GrowingClusters, true)
	printTrendList("New", s.NewClusters, false)
	printTrendList("Declining", s.DecliningClusters, true)
}

func printTrendList(label string, trends []core.ClusterTrend, withRate bool) {
	fmt.Printf("%s (%d):\n", label, len(trends))
	if len(trends) == 0 {
		fmt.Println("  (none)")
		fmt.Println()
		return
	}
	for _, t := range trends {
		if withRate {
			fmt.Printf("  %s  %d articles  rate %.2f\n", t.ClusterID, t.DocumentCount, t.GrowthRate)
		} else {
			fmt.Printf("  %s  %d articles\n", t.ClusterID, t.DocumentCount)
		}
	}
	fmt.Println()
}
