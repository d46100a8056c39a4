// Package clustering implements the incremental cluster assignment engine:
// articles are assigned to the nearest existing cluster by cosine distance,
// or found a new cluster when nothing is near enough. Centroids are
// maintained with incremental running means.
//
// Article-to-cluster uniqueness is not enforced transactionally; it is
// restored by RepairDuplicates, which is expected to run once per processing
// cycle before ReconcileAll.
package clustering

import (
	"strings"
	"time"

	"newsintel/internal/core"
	"newsintel/internal/logger"
	"newsintel/internal/store"
	"newsintel/internal/vectorstore"

	"github.com/google/uuid"
)

// Engine assigns article embeddings to clusters and maintains the cluster
// records. It assumes a single writer per processing cycle.
type Engine struct {
	distanceThreshold float64
	embeddings        vectorstore.EmbeddingStore
	clusters          *store.ClusterStore
}

// NewEngine creates an assignment engine. distanceThreshold is the maximum
// cosine distance at which an article still joins an existing cluster.
func NewEngine(distanceThreshold float64, embeddings vectorstore.EmbeddingStore, clusters *store.ClusterStore) *Engine {
	return &Engine{
		distanceThreshold: distanceThreshold,
		embeddings:        embeddings,
		clusters:          clusters,
	}
}

// Assign places the article into a cluster and returns the cluster ID it
// ends in. It returns ok=false when the article has no stored embedding.
//
// The cluster records are authoritative for membership; the embedding
// metadata's cluster pointer is a cache. When the two disagree the article
// is removed from the stale cluster before reassignment. Calling Assign on
// a correctly placed article is a no-op returning its current cluster.
func (e *Engine) Assign(articleID string) (string, bool) {
	embedding, ok := e.embeddings.GetVector(articleID)
	if !ok {
		logger.Warn("No embedding found for article", "article_id", articleID)
		return "", false
	}

	currentClusterID := e.findArticleCluster(articleID)
	cachedClusterID := ""
	if meta, ok := e.embeddings.GetMetadata(articleID); ok {
		cachedClusterID = meta.ClusterID
	}

	if currentClusterID != "" && currentClusterID == cachedClusterID {
		logger.Debug("Article already correctly assigned", "article_id", articleID, "cluster_id", currentClusterID)
		return currentClusterID, true
	}

	if currentClusterID != "" {
		logger.Warn("Article cluster membership inconsistent with cached pointer, removing",
			"article_id", articleID, "found_in", currentClusterID, "cached", cachedClusterID)
		e.Remove(currentClusterID, articleID)
	}

	var clusterID string
	nearestID, distance, found := e.nearestCluster(embedding)
	if !found || distance > e.distanceThreshold {
		clusterID = e.createCluster(articleID, embedding)
		logger.Debug("Created new cluster for article",
			"article_id", articleID, "cluster_id", clusterID, "distance", distance)
	} else {
		clusterID = nearestID
		e.addToCluster(clusterID, articleID, embedding)
		logger.Debug("Assigned article to existing cluster",
			"article_id", articleID, "cluster_id", clusterID, "distance", distance)
	}

	e.updateClusterPointer(articleID, embedding, clusterID)
	return clusterID, true
}

// Remove takes the article out of the cluster, downdating the centroid via
// the inverse running mean. A cluster emptied by removal is kept as a
// tombstone with a nil centroid rather than deleted.
func (e *Engine) Remove(clusterID, articleID string) {
	cluster, ok := e.clusters.Load(clusterID)
	if !ok || !cluster.Contains(articleID) {
		return
	}

	members := make([]string, 0, len(cluster.ArticleIDs)-1)
	for _, id := range cluster.ArticleIDs {
		if id != articleID {
			members = append(members, id)
		}
	}
	cluster.ArticleIDs = members
	count := cluster.DocumentCount
	cluster.DocumentCount = len(members)

	if cluster.DocumentCount == 0 {
		logger.Warn("Cluster has no articles after removal, keeping tombstone", "cluster_id", clusterID)
		cluster.Centroid = nil
	} else if embedding, ok := e.embeddings.GetVector(articleID); ok && cluster.Centroid != nil {
		downdated := make([]float64, len(cluster.Centroid))
		for i := range cluster.Centroid {
			downdated[i] = (cluster.Centroid[i]*float64(count) - embedding[i]) / float64(count-1)
		}
		cluster.Centroid = downdated
	}

	cluster.LastUpdated = time.Now().UTC()
	if err := e.clusters.Save(cluster); err != nil {
		logger.Error("Failed to save cluster after removal", err, "cluster_id", clusterID)
	}
}

// ReconcileAll assigns every embedding that is unassigned or whose cached
// pointer disagrees with its actual membership. It returns the assignments
// made, keyed by article ID.
func (e *Engine) ReconcileAll() map[string]string {
	assignments := make(map[string]string)
	for _, articleID := range e.embeddings.ListIDs() {
		currentClusterID := e.findArticleCluster(articleID)
		cachedClusterID := ""
		if meta, ok := e.embeddings.GetMetadata(articleID); ok {
			cachedClusterID = meta.ClusterID
		}

		if currentClusterID != "" && cachedClusterID != "" {
			if currentClusterID == cachedClusterID {
				continue
			}
			logger.Warn("Inconsistent cluster assignment, reassigning",
				"article_id", articleID, "found_in", currentClusterID, "cached", cachedClusterID)
			e.Remove(currentClusterID, articleID)
		}

		if clusterID, ok := e.Assign(articleID); ok {
			assignments[articleID] = clusterID
		}
	}
	logger.Info("Reconciled article assignments", "assigned", len(assignments))
	return assignments
}

// RepairDuplicates scans every cluster's membership, and for each article
// found in more than one cluster keeps it only in the first cluster in scan
// order, removing it from the rest. It returns the repaired articles mapped
// to every cluster they were found in. Running it twice in a row yields an
// empty report on the second run.
func (e *Engine) RepairDuplicates() map[string][]string {
	articleClusters := make(map[string][]string)
	var order []string
	for _, clusterID := range e.clusters.ListIDs() {
		cluster, ok := e.clusters.Load(clusterID)
		if !ok {
			continue
		}
		for _, articleID := range cluster.ArticleIDs {
			if _, seen := articleClusters[articleID]; !seen {
				order = append(order, articleID)
			}
			articleClusters[articleID] = append(articleClusters[articleID], clusterID)
		}
	}

	duplicates := make(map[string][]string)
	for _, articleID := range order {
		clusterIDs := articleClusters[articleID]
		if len(clusterIDs) < 2 {
			continue
		}
		duplicates[articleID] = clusterIDs
		logger.Warn("Article found in multiple clusters, keeping first",
			"article_id", articleID, "clusters", strings.Join(clusterIDs, ","), "keeping", clusterIDs[0])
		for _, clusterID := range clusterIDs[1:] {
			e.Remove(clusterID, articleID)
		}
	}

	if len(duplicates) > 0 {
		logger.Info("Repaired duplicate article assignments", "count", len(duplicates))
	}
	return duplicates
}

// findArticleCluster scans every cluster record for the article and returns
// the first cluster containing it, or "".
func (e *Engine) findArticleCluster(articleID string) string {
	for _, clusterID := range e.clusters.ListIDs() {
		cluster, ok := e.clusters.Load(clusterID)
		if !ok {
			continue
		}
		if cluster.Contains(articleID) {
			return clusterID
		}
	}
	return ""
}

// nearestCluster returns the closest cluster with a non-nil centroid by
// cosine distance. Ties resolve to the first cluster encountered in the
// store's stable scan order.
func (e *Engine) nearestCluster(embedding []float64) (string, float64, bool) {
	nearestID := ""
	minDistance := 0.0
	for _, clusterID := range e.clusters.ListIDs() {
		cluster, ok := e.clusters.Load(clusterID)
		if !ok || cluster.Centroid == nil {
			continue
		}
		distance := CosineDistance(embedding, cluster.Centroid)
		if nearestID == "" || distance < minDistance {
			nearestID = clusterID
			minDistance = distance
		}
	}
	if nearestID == "" {
		return "", 0, false
	}
	return nearestID, minDistance, true
}

// createCluster creates a new single-article cluster seeded with the
// article's embedding as its centroid.
func (e *Engine) createCluster(articleID string, embedding []float64) string {
	now := time.Now().UTC()
	centroid := make([]float64, len(embedding))
	copy(centroid, embedding)

	cluster := &core.Cluster{
		ID:            "cluster_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		Centroid:      centroid,
		DocumentCount: 1,
		ArticleIDs:    []string{articleID},
		CreatedAt:     now,
		LastUpdated:   now,
	}
	if err := e.clusters.Save(cluster); err != nil {
		logger.Error("Failed to save new cluster", err, "cluster_id", cluster.ID)
	}
	logger.Info("Created new cluster", "cluster_id", cluster.ID)
	return cluster.ID
}

// addToCluster merges the article into an existing cluster, updating the
// centroid with the incremental running mean.
func (e *Engine) addToCluster(clusterID, articleID string, embedding []float64) {
	cluster, ok := e.clusters.Load(clusterID)
	if !ok {
		return
	}
	if cluster.Contains(articleID) {
		logger.Debug("Article already in cluster, skipping", "article_id", articleID, "cluster_id", clusterID)
		return
	}

	if cluster.Centroid == nil {
		// Tombstone being revived; the first member defines the centroid.
		centroid := make([]float64, len(embedding))
		copy(centroid, embedding)
		cluster.Centroid = centroid
	} else {
		count := float64(cluster.DocumentCount)
		updated := make([]float64, len(cluster.Centroid))
		for i := range cluster.Centroid {
			updated[i] = (cluster.Centroid[i]*count + embedding[i]) / (count + 1)
		}
		cluster.Centroid = updated
	}

	cluster.ArticleIDs = append(cluster.ArticleIDs, articleID)
	cluster.DocumentCount++
	cluster.LastUpdated = time.Now().UTC()
	if err := e.clusters.Save(cluster); err != nil {
		logger.Error("Failed to save cluster after merge", err, "cluster_id", clusterID)
	}
}

// updateClusterPointer writes the resulting cluster ID back onto the
// embedding metadata cache.
func (e *Engine) updateClusterPointer(articleID string, embedding []float64, clusterID string) {
	meta := core.EmbeddingMetadata{ArticleID: articleID, CreatedAt: time.Now().UTC()}
	if existing, ok := e.embeddings.GetMetadata(articleID); ok {
		meta = *existing
	}
	meta.ClusterID = clusterID
	if err := e.embeddings.SaveVector(articleID, embedding, meta); err != nil {
		logger.Error("Failed to update embedding cluster pointer", err, "article_id", articleID)
	}
}
