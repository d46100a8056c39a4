package handlers

import (
	"fmt"

	"newsintel/internal/clustering"
	"newsintel/internal/config"
	"newsintel/internal/pipeline"

	"github.com/spf13/cobra"
)

// NewRepairCmd creates the repair command, which heals cluster state
// without running a full cycle.
func NewRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair cluster assignments",
		Long: `Repair cluster assignments.

Removes articles that appear in more than one cluster (the first cluster in
stable scan order keeps the article), then re-runs assignment over every
stored embedding so stale cached cluster pointers are healed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair()
		},
	}

	return cmd
}

func runRepair() error {
	cfg := config.Get()

	comps, err := pipeline.OpenComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.Close()

	engine := clustering.NewEngine(cfg.Clustering.DistanceThreshold, comps.Vectors, comps.Clusters)

	repaired := engine.RepairDuplicates()
	if len(repaired) == 0 {
		fmt.Println("No duplicate memberships found.")
	} else {
		for articleID, removedFrom := range repaired {
			fmt.Printf("Article %s removed from %d extra cluster(s)\n", articleID, len(removedFrom))
		}
	}

	assignments := engine.ReconcileAll()
	fmt.Printf("Reconciled %d articles.\n", len(assignments))
	return nil
}
