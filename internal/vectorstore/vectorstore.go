// Package vectorstore persists article embeddings and their metadata.
package vectorstore

import "newsintel/internal/core"

// EmbeddingStore is the contract the assignment engine and embedding
// generator depend on. Implementations must keep vector and metadata for an
// article in step: SaveVector replaces both.
type EmbeddingStore interface {
	// GetVector returns the embedding for an article, or absent.
	GetVector(articleID string) ([]float64, bool)

	// GetMetadata returns the stored metadata for an article, or absent.
	GetMetadata(articleID string) (*core.EmbeddingMetadata, bool)

	// SaveVector upserts the vector and metadata for an article.
	SaveVector(articleID string, vector []float64, meta core.EmbeddingMetadata) error

	// ListIDs returns all article IDs with stored vectors in stable
	// lexicographic order.
	ListIDs() []string

	// AllVectors returns a copy of every stored vector keyed by article ID.
	AllVectors() map[string][]float64
}
