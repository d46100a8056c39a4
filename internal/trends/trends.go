// Package trends classifies the cluster population against the previous
// snapshot, bucketing clusters into new, growing, declining, and stable, and
// appends the result to an immutable snapshot history.
package trends

import (
	"math"
	"sort"
	"time"

	"newsintel/internal/core"
	"newsintel/internal/logger"
	"newsintel/internal/store"
)

// listCap bounds the enumerated clusters per category in a snapshot.
const listCap = 10

// Config holds the classifier's thresholds.
type Config struct {
	GrowthThreshold       float64 // growth_rate at or above which a cluster is growing
	DeclineThreshold      float64 // growth_rate at or below which a non-empty cluster is declining
	NewClusterWindowHours float64 // clusters younger than this are new regardless of growth
}

// Classifier produces trend snapshots from the cluster store.
type Classifier struct {
	cfg      Config
	clusters *store.ClusterStore
	trends   *store.TrendStore
	now      func() time.Time
}

// NewClassifier creates a trend classifier over the given stores.
func NewClassifier(cfg Config, clusters *store.ClusterStore, trends *store.TrendStore) *Classifier {
	return &Classifier{cfg: cfg, clusters: clusters, trends: trends, now: time.Now}
}

// Detect classifies every current cluster against the latest prior snapshot
// and persists a new snapshot under the current timestamp. Classification is
// evaluated in strict priority order: new, then growing, then declining,
// then stable; the categories are mutually exclusive.
func (c *Classifier) Detect() (*core.TrendSnapshot, error) {
	now := c.now().UTC()
	clusters := c.clusters.All()
	baseline := c.baselineCounts()
	window := time.Duration(c.cfg.NewClusterWindowHours * float64(time.Hour))

	var growing, newClusters, declining []core.ClusterTrend
	stableCount := 0

	for clusterID, cluster := range clusters {
		previousCount := baseline[clusterID]
		rate := growthRate(cluster.DocumentCount, previousCount)

		trend := core.ClusterTrend{
			ClusterID:     clusterID,
			DocumentCount: cluster.DocumentCount,
			GrowthRate:    encodableRate(rate),
			CreatedAt:     cluster.CreatedAt,
			LastUpdated:   cluster.LastUpdated,
		}

		switch {
		case now.Sub(cluster.CreatedAt) < window:
			newClusters = append(newClusters, trend)
		case rate >= c.cfg.GrowthThreshold:
			growing = append(growing, trend)
		case rate <= c.cfg.DeclineThreshold && cluster.DocumentCount > 0:
			declining = append(declining, trend)
		default:
			stableCount++
		}
	}

	sort.SliceStable(growing, func(i, j int) bool { return growing[i].GrowthRate > growing[j].GrowthRate })
	sort.SliceStable(newClusters, func(i, j int) bool {
		return newClusters[i].DocumentCount > newClusters[j].DocumentCount
	})
	sort.SliceStable(declining, func(i, j int) bool { return declining[i].GrowthRate < declining[j].GrowthRate })

	snapshot := &core.TrendSnapshot{
		Timestamp:         now.Format(core.SnapshotTimeFormat),
		TotalClusters:     len(clusters),
		GrowingClusters:   cap10(growing),
		NewClusters:       cap10(newClusters),
		DecliningClusters: cap10(declining),
		StableCount:       stableCount,
	}

	if err := c.trends.Save(snapshot); err != nil {
		return nil, err
	}
	logger.Info("Detected trends",
		"growing", len(snapshot.GrowingClusters),
		"new", len(snapshot.NewClusters),
		"declining", len(snapshot.DecliningClusters),
		"stable", stableCount)
	return snapshot, nil
}

// baselineCounts builds the per-cluster document count baseline from the
// latest prior snapshot's growing, new, and declining lists. A current
// cluster absent from that union starts from 0 (cold start).
func (c *Classifier) baselineCounts() map[string]int {
	baseline := make(map[string]int)
	previous, ok := c.trends.Latest()
	if !ok {
		return baseline
	}
	for _, list := range [][]core.ClusterTrend{previous.GrowingClusters, previous.NewClusters, previous.DecliningClusters} {
		for _, trend := range list {
			baseline[trend.ClusterID] = trend.DocumentCount
		}
	}
	return baseline
}

// growthRate is current/previous, with a previous count of 0 yielding +Inf
// for any non-empty cluster and 0 for an empty one.
func growthRate(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return math.Inf(1)
		}
		return 0.0
	}
	return float64(current) / float64(previous)
}

// encodableRate clamps +Inf to MaxFloat64; JSON has no representation for
// infinity. Classification and sorting happen on the clamped value too,
// which preserves ordering since MaxFloat64 still ranks above every real
// rate.
func encodableRate(rate float64) float64 {
	if math.IsInf(rate, 1) {
		return math.MaxFloat64
	}
	return rate
}

func cap10(trends []core.ClusterTrend) []core.ClusterTrend {
	if len(trends) > listCap {
		return trends[:listCap]
	}
	if trends == nil {
		return []core.ClusterTrend{}
	}
	return trends
}
