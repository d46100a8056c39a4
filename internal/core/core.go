// Package core defines the domain types shared by every layer of newsintel.
package core

import "time"

// RawArticle is an article exactly as a source client delivered it.
type RawArticle struct {
	ID              string    `json:"article_id"`          // Deterministic ID derived from the source item
	Title           string    `json:"title"`               // Article title
	Snippet         string    `json:"snippet"`             // Short teaser text, if the source provides one
	Description     string    `json:"description"`         // Longer description, if the source provides one
	Body            string    `json:"body"`                // Full body text or HTML, if available
	URL             string    `json:"url"`                 // Canonical article URL
	Source          string    `json:"source"`              // Publisher or source name
	PublishedDate   string    `json:"published_date"`      // Publication date as reported by the source
	IngestionEngine string    `json:"ingestion_engine"`    // Which client ingested this article
	IngestedAt      time.Time `json:"ingestion_timestamp"` // When the article entered the raw store
}

// ProcessedArticle is a normalized, filtered article ready for embedding.
type ProcessedArticle struct {
	ID            string    `json:"article_id"`           // Same ID as the raw article
	Title         string    `json:"title"`                // Title carried over from the raw article
	Description   string    `json:"description"`          // Snippet or description, whichever was present
	Text          string    `json:"text"`                 // Normalized full text
	URL           string    `json:"url"`                  // Canonical article URL
	Source        string    `json:"source"`               // Publisher or source name
	PublishedDate string    `json:"published_date"`       // Publication date carried over
	ContentHash   string    `json:"content_hash"`         // SHA-256 of the normalized text
	WordCount     int       `json:"word_count"`           // Number of whitespace-separated tokens
	CharCount     int       `json:"char_count"`           // Length of the normalized text in bytes
	ProcessedAt   time.Time `json:"processing_timestamp"` // When normalization ran
}

// EmbeddingMetadata travels with a stored vector. The ClusterID pointer is a
// cache of the article's cluster membership; the cluster records themselves
// are authoritative and the pointer can go stale between repair passes.
type EmbeddingMetadata struct {
	ArticleID string    `json:"article_id"` // Article the vector belongs to
	ClusterID string    `json:"cluster_id"` // Cached cluster assignment, "" when unassigned
	Model     string    `json:"model"`      // Embedding model that produced the vector
	CreatedAt time.Time `json:"created_at"` // When the vector was generated
}

// Cluster is an incrementally maintained topic cluster.
//
// Invariants: DocumentCount == len(ArticleIDs); Centroid is the arithmetic
// mean of the member embeddings whenever DocumentCount > 0. A cluster whose
// last article is removed is kept as a tombstone (DocumentCount 0, nil
// centroid) rather than deleted.
type Cluster struct {
	ID            string    `json:"cluster_id"`     // Unique generated identifier
	Centroid      []float64 `json:"centroid"`       // Mean embedding of all members, nil when empty
	DocumentCount int       `json:"document_count"` // Number of member articles
	ArticleIDs    []string  `json:"article_ids"`    // Member article IDs in insertion order
	CreatedAt     time.Time `json:"created_at"`     // When the cluster was created
	LastUpdated   time.Time `json:"last_updated"`   // Last membership or centroid mutation
	Summary       string    `json:"summary"`        // LLM-generated summary, set by the summarizer
}

// Contains reports whether articleID is a member of the cluster.
func (c *Cluster) Contains(articleID string) bool {
	for _, id := range c.ArticleIDs {
		if id == articleID {
			return true
		}
	}
	return false
}

// KeywordFrequency pairs a keyword with its (possibly decayed) frequency.
type KeywordFrequency struct {
	Keyword   string  `json:"keyword"`   // The keyword token
	Frequency float64 `json:"frequency"` // Decayed occurrence count
}

// TopicStats holds the rolling keyword statistics for one cluster. The
// record is recomputed wholesale on every accumulator update, not appended
// to.
type TopicStats struct {
	ClusterID     string             `json:"cluster_id"`     // Cluster the stats describe
	KeywordCounts map[string]float64 `json:"keyword_counts"` // Decayed counts, entries below the frequency floor are dropped
	TopKeywords   []KeywordFrequency `json:"top_keywords"`   // Highest-frequency keywords, capped
	TotalKeywords int                `json:"total_keywords"` // Number of keywords above the floor
	LastUpdated   time.Time          `json:"last_updated"`   // When the stats were last recomputed
}

// ClusterTrend captures one cluster's position in a trend snapshot.
type ClusterTrend struct {
	ClusterID     string    `json:"cluster_id"`     // Cluster being classified
	DocumentCount int       `json:"document_count"` // Member count at snapshot time
	GrowthRate    float64   `json:"growth_rate"`    // Current count / baseline count
	CreatedAt     time.Time `json:"created_at"`     // Cluster creation time
	LastUpdated   time.Time `json:"last_updated"`   // Cluster last mutation time
}

// TrendSnapshot is one timestamped classification of the whole cluster
// population. Snapshots are immutable once written; history is an append-only
// log keyed by the Timestamp string.
type TrendSnapshot struct {
	Timestamp         string         `json:"timestamp"`             // Fixed-width UTC timestamp, lexicographically sortable
	TotalClusters     int            `json:"total_clusters"`        // Cluster count including tombstones
	GrowingClusters   []ClusterTrend `json:"growing_clusters"`      // Sorted by growth rate descending, capped at 10
	NewClusters       []ClusterTrend `json:"new_clusters"`          // Sorted by document count descending, capped at 10
	DecliningClusters []ClusterTrend `json:"declining_clusters"`    // Sorted by growth rate ascending, capped at 10
	StableCount       int            `json:"stable_clusters_count"` // Stable clusters are counted, not enumerated
}

// SnapshotTimeFormat keeps snapshot keys fixed-width so that lexicographic
// order equals chronological order. RFC3339Nano trims trailing zeros and
// does not sort.
const SnapshotTimeFormat = "2006-01-02T15:04:05.000000000Z"
