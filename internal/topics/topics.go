// Package topics maintains rolling keyword statistics per cluster with
// continuous time decay: old evidence fades at a per-hour rate, and keywords
// that fall below the frequency floor are dropped for good.
//
// Update recomputes a cluster's statistics from every current member on each
// call. Repeated calls with no new articles therefore re-add the same
// evidence on top of the decayed counts; callers are expected to invoke it
// once per processing cycle.
package topics

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"newsintel/internal/core"
	"newsintel/internal/logger"
	"newsintel/internal/store"
)

// Config holds the accumulator's tuning knobs.
type Config struct {
	TimeDecayFactor       float64 // Per-hour multiplicative retention rate
	MinKeywordFrequency   float64 // Counts below this are dropped from the stats
	TopKeywordsPerCluster int     // Cap on the top_keywords list
}

// Accumulator recomputes per-cluster keyword statistics.
type Accumulator struct {
	cfg       Config
	clusters  *store.ClusterStore
	processed *store.ProcessedStore
	topics    *store.TopicStore
	now       func() time.Time
}

// NewAccumulator creates a topic accumulator over the given stores.
func NewAccumulator(cfg Config, clusters *store.ClusterStore, processed *store.ProcessedStore, topics *store.TopicStore) *Accumulator {
	return &Accumulator{
		cfg:       cfg,
		clusters:  clusters,
		processed: processed,
		topics:    topics,
		now:       time.Now,
	}
}

// ExtractKeywords lower-cases the text, splits on whitespace, and keeps
// tokens that are purely alphabetic and longer than 3 runes. No stemming and
// no stopword list; the extraction is deterministic and dependency-free.
func ExtractKeywords(text string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len([]rune(word)) > 3 && isAlpha(word) {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Update recomputes the keyword statistics for one cluster: decays the
// previously stored counts by elapsed wall-clock hours, re-adds keyword
// evidence from every article currently in the cluster, drops entries below
// the frequency floor, and persists the result.
func (a *Accumulator) Update(clusterID string) {
	cluster, ok := a.clusters.Load(clusterID)
	if !ok {
		logger.Warn("Cluster not found for topic update", "cluster_id", clusterID)
		return
	}

	counts := make(map[string]float64)
	if existing, ok := a.topics.Load(clusterID); ok {
		counts = a.decay(existing.KeywordCounts, existing.LastUpdated)
	}

	for _, articleID := range cluster.ArticleIDs {
		article, ok := a.processed.Load(articleID)
		if !ok {
			logger.Debug("Processed article missing, skipping", "article_id", articleID, "cluster_id", clusterID)
			continue
		}
		for _, keyword := range ExtractKeywords(article.Text) {
			counts[keyword]++
		}
	}

	filtered := make(map[string]float64)
	for keyword, count := range counts {
		if count >= a.cfg.MinKeywordFrequency {
			filtered[keyword] = count
		}
	}

	stats := &core.TopicStats{
		ClusterID:     clusterID,
		KeywordCounts: filtered,
		TopKeywords:   topKeywords(filtered, a.cfg.TopKeywordsPerCluster),
		TotalKeywords: len(filtered),
	}
	if err := a.topics.Save(stats); err != nil {
		logger.Error("Failed to save topic stats", err, "cluster_id", clusterID)
		return
	}
	logger.Debug("Updated topics for cluster", "cluster_id", clusterID, "keywords", len(filtered))
}

// UpdateAll recomputes the statistics for every existing cluster,
// unconditionally.
func (a *Accumulator) UpdateAll() {
	clusterIDs := a.clusters.ListIDs()
	for _, clusterID := range clusterIDs {
		a.Update(clusterID)
	}
	logger.Info("Updated topics for all clusters", "clusters", len(clusterIDs))
}

// decay applies continuous exponential decay to every count: factor raised
// to the fractional hours elapsed since the stats were last updated.
func (a *Accumulator) decay(counts map[string]float64, lastUpdated time.Time) map[string]float64 {
	hours := a.now().UTC().Sub(lastUpdated).Hours()
	if hours < 0 {
		hours = 0
	}
	factor := math.Pow(a.cfg.TimeDecayFactor, hours)

	decayed := make(map[string]float64, len(counts))
	for keyword, count := range counts {
		decayed[keyword] = count * factor
	}
	return decayed
}

// topKeywords returns the highest-frequency entries in descending order,
// truncated to limit. Equal counts keep their relative order from the sort
// input, which is map iteration order; callers get no ordering guarantee
// between ties.
func topKeywords(counts map[string]float64, limit int) []core.KeywordFrequency {
	ranked := make([]core.KeywordFrequency, 0, len(counts))
	for keyword, count := range counts {
		ranked = append(ranked, core.KeywordFrequency{Keyword: keyword, Frequency: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Frequency > ranked[j].Frequency
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
