package handlers

import (
	"context"
	"fmt"
	"time"

	"newsintel/internal/config"
	"newsintel/internal/pipeline"

	"github.com/spf13/cobra"
)

// NewCycleCmd creates the cycle command, which runs one full intelligence
// pass: ingest, normalize, embed, cluster, repair, topics, trends.
func NewCycleCmd() *cobra.Command {
	var (
		query       string
		maxArticles int
		summarize   bool
	)

	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run one full intelligence cycle",
		Long: `Run one full intelligence cycle.

Each cycle ingests articles from the configured sources, normalizes and
embeds the new ones, assigns every embedded article to a cluster, repairs
any duplicate memberships, updates per-cluster topic statistics, and writes
a new trend snapshot.

Examples:
  # Run with the default query
  newsintel cycle

  # Focus ingestion and generate cluster summaries
  newsintel cycle --query "semiconductor supply chain" --summarize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycle(cmd.Context(), query, maxArticles, summarize)
		},
	}

	cmd.Flags().StringVar(&query, "query", "technology news", "search query for source clients")
	cmd.Flags().IntVar(&maxArticles, "max-articles", 50, "per-source article cap")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "generate LLM summaries for clusters")

	return cmd
}

func runCycle(ctx context.Context, query string, maxArticles int, summarize bool) error {
	cfg := config.Get()

	comps, err := pipeline.OpenComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.Close()

	p, err := pipeline.Build(cfg, comps)
	if err != nil {
		return err
	}

	stats, err := p.RunCycle(ctx, pipeline.CycleOptions{
		Query:       query,
		MaxArticles: maxArticles,
		Summarize:   summarize,
	})
	if err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}

	fmt.Printf("Cycle finished in %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Printf("  Ingested:   %d\n", stats.Ingested)
	fmt.Printf("  Processed:  %d\n", stats.Processed)
	fmt.Printf("  Embedded:   %d\n", stats.Embedded)
	fmt.Printf("  Assigned:   %d articles across clusters\n", len(stats.Assignments))
	if len(stats.Repaired) > 0 {
		fmt.Printf("  Repaired:   %d duplicate memberships\n", len(stats.Repaired))
	}
	if summarize {
		fmt.Printf("  Summarized: %d clusters\n", stats.Summarized)
	}
	if stats.Snapshot != nil {
		fmt.Printf("  Trends:     %d growing, %d new, %d declining, %d stable\n",
			len(stats.Snapshot.GrowingClusters),
			len(stats.Snapshot.NewClusters),
			len(stats.Snapshot.DecliningClusters),
			stats.Snapshot.StableCount)
	}
	return nil
}
