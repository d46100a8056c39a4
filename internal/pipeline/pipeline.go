// Package pipeline orchestrates the end-to-end intelligence cycle:
// ingest, normalize, embed, cluster, repair, topics, trends.
package pipeline

import (
	"context"
	"time"

	"newsintel/internal/clustering"
	"newsintel/internal/core"
	"newsintel/internal/embeddings"
	"newsintel/internal/ingest"
	"newsintel/internal/logger"
	"newsintel/internal/normalize"
	"newsintel/internal/summarize"
	"newsintel/internal/topics"
	"newsintel/internal/trends"
)

// Pipeline coordinates all components of one intelligence cycle. The
// embedding generator and summarizer are optional; when nil their steps are
// skipped so the pipeline degrades gracefully without an API key.
type Pipeline struct {
	ingester    *ingest.Ingester
	processor   *normalize.Processor
	generator   *embeddings.Generator
	engine      *clustering.Engine
	accumulator *topics.Accumulator
	classifier  *trends.Classifier
	summarizer  *summarize.ClusterSummarizer
}

// New creates a pipeline from its components.
func New(
	ingester *ingest.Ingester,
	processor *normalize.Processor,
	generator *embeddings.Generator,
	engine *clustering.Engine,
	accumulator *topics.Accumulator,
	classifier *trends.Classifier,
	summarizer *summarize.ClusterSummarizer,
) *Pipeline {
	return &Pipeline{
		ingester:    ingester,
		processor:   processor,
		generator:   generator,
		engine:      engine,
		accumulator: accumulator,
		classifier:  classifier,
		summarizer:  summarizer,
	}
}

// CycleOptions configures one pipeline run.
type CycleOptions struct {
	Query       string // Search query passed to source clients
	MaxArticles int    // Per-source fetch cap
	Summarize   bool   // Generate cluster summaries after classification
}

// CycleStats reports what one pipeline run did.
type CycleStats struct {
	Ingested        int                 // New raw articles stored
	Processed       int                 // Articles that passed normalization
	Embedded        int                 // New vectors generated
	Assignments     map[string]string   // Article ID to cluster ID after reconciliation
	Repaired        map[string][]string // Articles that were in multiple clusters
	Summarized      int                 // Clusters that received a new summary
	Snapshot        *core.TrendSnapshot // Trend snapshot written by this run
	Duration        time.Duration       // Wall clock time of the run
}

// RunCycle executes one full cycle. Ingestion, normalization, and embedding
// are incremental: already-handled articles are skipped by each stage.
// Clustering runs over the whole vector store so stale cached assignments
// and duplicate memberships are healed every cycle.
func (p *Pipeline) RunCycle(ctx context.Context, opts CycleOptions) (*CycleStats, error) {
	start := time.Now()
	stats := &CycleStats{}

	newIDs := p.ingester.Ingest(opts.Query, opts.MaxArticles)
	stats.Ingested = len(newIDs)

	stats.Processed = len(p.processor.ProcessNew())

	if p.generator != nil {
		stats.Embedded = len(p.generator.GenerateNew(ctx))
	} else {
		logger.Warn("No embedding provider configured, skipping embedding step")
	}

	// Repair before reconciling so assignment never sees an article in two
	// clusters at once.
	stats.Repaired = p.engine.RepairDuplicates()
	stats.Assignments = p.engine.ReconcileAll()

	p.accumulator.UpdateAll()

	snapshot, err := p.classifier.Detect()
	if err != nil {
		return stats, err
	}
	stats.Snapshot = snapshot

	if opts.Summarize && p.summarizer != nil {
		stats.Summarized = p.summarizer.SummarizeAll(ctx)
	}

	stats.Duration = time.Since(start)
	logger.Info("Cycle complete",
		"ingested", stats.Ingested,
		"processed", stats.Processed,
		"embedded", stats.Embedded,
		"clusters", snapshot.TotalClusters,
		"duration", stats.Duration.Round(time.Millisecond).String())
	return stats, nil
}
