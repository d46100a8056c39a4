package store

import (
	"time"

	"newsintel/internal/core"
)

// ArticleStore persists raw articles as delivered by source clients.
type ArticleStore struct {
	backend Backend
}

// NewArticleStore creates a raw article store over a backend.
func NewArticleStore(backend Backend) *ArticleStore {
	return &ArticleStore{backend: backend}
}

// Save stores the raw article, stamping its ingestion time.
func (s *ArticleStore) Save(article *core.RawArticle) error {
	article.IngestedAt = time.Now().UTC()
	return s.backend.Save(article.ID, article)
}

// Load returns the raw article for id, or absent.
func (s *ArticleStore) Load(id string) (*core.RawArticle, bool) {
	var article core.RawArticle
	if !s.backend.Load(id, &article) {
		return nil, false
	}
	return &article, true
}

// Exists reports whether a raw article is stored for id.
func (s *ArticleStore) Exists(id string) bool { return s.backend.Exists(id) }

// ListIDs returns all raw article IDs.
func (s *ArticleStore) ListIDs() []string { return s.backend.ListKeys("") }

// ProcessedStore persists normalized articles.
type ProcessedStore struct {
	backend Backend
}

// NewProcessedStore creates a processed article store over a backend.
func NewProcessedStore(backend Backend) *ProcessedStore {
	return &ProcessedStore{backend: backend}
}

// Save stores the processed article, stamping its processing time.
func (s *ProcessedStore) Save(article *core.ProcessedArticle) error {
	article.ProcessedAt = time.Now().UTC()
	return s.backend.Save(article.ID, article)
}

// Load returns the processed article for id, or absent.
func (s *ProcessedStore) Load(id string) (*core.ProcessedArticle, bool) {
	var article core.ProcessedArticle
	if !s.backend.Load(id, &article) {
		return nil, false
	}
	return &article, true
}

// Exists reports whether a processed article is stored for id.
func (s *ProcessedStore) Exists(id string) bool { return s.backend.Exists(id) }

// ListIDs returns all processed article IDs.
func (s *ProcessedStore) ListIDs() []string { return s.backend.ListKeys("") }

// ClusterStore persists cluster records. Its ListIDs order is the stable
// scan order the assignment engine's tie-breaking and duplicate repair rely
// on.
type ClusterStore struct {
	backend Backend
}

// NewClusterStore creates a cluster store over a backend.
func NewClusterStore(backend Backend) *ClusterStore {
	return &ClusterStore{backend: backend}
}

// Save stores the cluster record.
func (s *ClusterStore) Save(cluster *core.Cluster) error {
	return s.backend.Save(cluster.ID, cluster)
}

// Load returns the cluster for id, or absent.
func (s *ClusterStore) Load(id string) (*core.Cluster, bool) {
	var cluster core.Cluster
	if !s.backend.Load(id, &cluster) {
		return nil, false
	}
	return &cluster, true
}

// ListIDs returns all cluster IDs in stable lexicographic order.
func (s *ClusterStore) ListIDs() []string { return s.backend.ListKeys("") }

// All returns every loadable cluster keyed by ID.
func (s *ClusterStore) All() map[string]*core.Cluster {
	clusters := make(map[string]*core.Cluster)
	for _, id := range s.ListIDs() {
		if cluster, ok := s.Load(id); ok {
			clusters[id] = cluster
		}
	}
	return clusters
}

// TopicStore persists per-cluster topic statistics.
type TopicStore struct {
	backend Backend
}

// NewTopicStore creates a topic statistics store over a backend.
func NewTopicStore(backend Backend) *TopicStore {
	return &TopicStore{backend: backend}
}

// Save stores the stats record, stamping its update time.
func (s *TopicStore) Save(stats *core.TopicStats) error {
	stats.LastUpdated = time.Now().UTC()
	return s.backend.Save(stats.ClusterID, stats)
}

// Load returns the stats for clusterID, or absent.
func (s *TopicStore) Load(clusterID string) (*core.TopicStats, bool) {
	var stats core.TopicStats
	if !s.backend.Load(clusterID, &stats) {
		return nil, false
	}
	return &stats, true
}

// TrendStore persists trend snapshots keyed by their timestamp string.
// Snapshots form an append-only history and are never overwritten.
type TrendStore struct {
	backend Backend
}

// NewTrendStore creates a trend snapshot store over a backend.
func NewTrendStore(backend Backend) *TrendStore {
	return &TrendStore{backend: backend}
}

// Save stores the snapshot under its timestamp key.
func (s *TrendStore) Save(snapshot *core.TrendSnapshot) error {
	return s.backend.Save(snapshot.Timestamp, snapshot)
}

// Load returns the snapshot for timestamp, or absent.
func (s *TrendStore) Load(timestamp string) (*core.TrendSnapshot, bool) {
	var snapshot core.TrendSnapshot
	if !s.backend.Load(timestamp, &snapshot) {
		return nil, false
	}
	return &snapshot, true
}

// ListTimestamps returns all snapshot timestamps in lexicographic order.
func (s *TrendStore) ListTimestamps() []string { return s.backend.ListKeys("") }

// Latest returns the most recent snapshot by lexicographically-maximal
// timestamp, which is chronological order for the fixed-width keys used.
func (s *TrendStore) Latest() (*core.TrendSnapshot, bool) {
	timestamps := s.ListTimestamps()
	if len(timestamps) == 0 {
		return nil, false
	}
	return s.Load(timestamps[len(timestamps)-1])
}
