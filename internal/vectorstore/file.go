package vectorstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"newsintel/internal/core"
	"newsintel/internal/logger"
)

// FileVectorStore keeps all vectors and metadata in memory and writes them
// through to two JSON files on every save. Suited to the corpus sizes this
// system targets; not safe for concurrent writers.
type FileVectorStore struct {
	dir      string
	vectors  map[string][]float64
	metadata map[string]core.EmbeddingMetadata
}

// NewFileVectorStore opens (creating if needed) the vector store under dir
// and loads any previously persisted state.
func NewFileVectorStore(dir string) (*FileVectorStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create vector store directory: %w", err)
	}
	s := &FileVectorStore{
		dir:      dir,
		vectors:  make(map[string][]float64),
		metadata: make(map[string]core.EmbeddingMetadata),
	}
	s.loadState()
	return s, nil
}

func (s *FileVectorStore) vectorsPath() string  { return filepath.Join(s.dir, "vectors.json") }
func (s *FileVectorStore) metadataPath() string { return filepath.Join(s.dir, "metadata.json") }

func (s *FileVectorStore) loadState() {
	loadJSON(s.vectorsPath(), &s.vectors)
	loadJSON(s.metadataPath(), &s.metadata)
	if len(s.vectors) > 0 {
		logger.Debug("Loaded vectors from storage", "count", len(s.vectors))
	}
}

// loadJSON fills out from path, treating missing or malformed files as an
// empty store.
func loadJSON(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read vector store file", "path", path, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("Malformed vector store file, starting empty", "path", path, "error", err)
	}
}

func (s *FileVectorStore) saveState() error {
	vectors, err := json.Marshal(s.vectors)
	if err != nil {
		return fmt.Errorf("failed to marshal vectors: %w", err)
	}
	metadata, err := json.Marshal(s.metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.vectorsPath(), vectors, 0o644); err != nil {
		return fmt.Errorf("failed to write vectors: %w", err)
	}
	if err := os.WriteFile(s.metadataPath(), metadata, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// GetVector returns the embedding for an article, or absent.
func (s *FileVectorStore) GetVector(articleID string) ([]float64, bool) {
	vector, ok := s.vectors[articleID]
	return vector, ok
}

// GetMetadata returns the stored metadata for an article, or absent.
func (s *FileVectorStore) GetMetadata(articleID string) (*core.EmbeddingMetadata, bool) {
	meta, ok := s.metadata[articleID]
	if !ok {
		return nil, false
	}
	return &meta, true
}

// SaveVector upserts the vector and metadata for an article and persists
// the store.
func (s *FileVectorStore) SaveVector(articleID string, vector []float64, meta core.EmbeddingMetadata) error {
	s.vectors[articleID] = vector
	s.metadata[articleID] = meta
	return s.saveState()
}

// ListIDs returns all article IDs with stored vectors, sorted for a stable
// iteration order.
func (s *FileVectorStore) ListIDs() []string {
	ids := make([]string, 0, len(s.vectors))
	for id := range s.vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AllVectors returns a copy of every stored vector keyed by article ID.
func (s *FileVectorStore) AllVectors() map[string][]float64 {
	vectors := make(map[string][]float64, len(s.vectors))
	for id, vector := range s.vectors {
		vectors[id] = vector
	}
	return vectors
}
