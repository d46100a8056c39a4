package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"newsintel/internal/logger"
)

// FileBackend stores one JSON file per key under a directory.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Save writes the record as indented JSON under key.
func (f *FileBackend) Save(key string, record any) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", key, err)
	}
	if err := os.WriteFile(f.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write record %s: %w", key, err)
	}
	return nil
}

// Load reads the record stored under key. Unreadable or malformed files are
// treated as absent.
func (f *FileBackend) Load(key string, out any) bool {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read record, treating as absent", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("Malformed record, treating as absent", "key", key, "error", err)
		return false
	}
	return true
}

// Exists reports whether a record file is present for key.
func (f *FileBackend) Exists(key string) bool {
	_, err := os.Stat(f.path(key))
	return err == nil
}

// ListKeys returns all record keys with the given prefix in lexicographic
// order.
func (f *FileBackend) ListKeys(prefix string) []string {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		logger.Warn("Failed to list storage directory", "dir", f.dir, "error", err)
		return nil
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
