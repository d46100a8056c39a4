package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"newsintel/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend stores records as JSON blobs in a single SQLite database,
// one table per record kind. It honors the same key-value contract as
// FileBackend.
type SQLiteBackend struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens (creating if needed) the shared newsintel database in
// dataDir. The returned handle is shared by every SQLiteBackend built from
// it.
func OpenSQLite(dataDir string) (*sql.DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(dataDir, "newsintel.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// NewSQLiteBackend creates a backend over one table of the shared database.
func NewSQLiteBackend(db *sql.DB, table string) (*SQLiteBackend, error) {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		record TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`, table)
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return &SQLiteBackend{db: db, table: table}, nil
}

// Save upserts the record as a JSON blob under key.
func (s *SQLiteBackend) Save(key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", key, err)
	}
	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (key, record, updated_at) VALUES (?, ?, ?)`, s.table)
	if _, err := s.db.Exec(query, key, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	return nil
}

// Load reads the record stored under key. Query failures and malformed blobs
// are treated as absent.
func (s *SQLiteBackend) Load(key string, out any) bool {
	query := fmt.Sprintf(`SELECT record FROM %s WHERE key = ?`, s.table)
	var data string
	err := s.db.QueryRow(query, key).Scan(&data)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Warn("Failed to read record, treating as absent", "table", s.table, "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		logger.Warn("Malformed record, treating as absent", "table", s.table, "key", key, "error", err)
		return false
	}
	return true
}

// Exists reports whether a record row is present for key.
func (s *SQLiteBackend) Exists(key string) bool {
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE key = ?`, s.table)
	var one int
	return s.db.QueryRow(query, key).Scan(&one) == nil
}

// ListKeys returns all record keys with the given prefix in lexicographic
// order.
func (s *SQLiteBackend) ListKeys(prefix string) []string {
	query := fmt.Sprintf(`SELECT key FROM %s WHERE key LIKE ? ORDER BY key`, s.table)
	rows, err := s.db.Query(query, prefix+"%")
	if err != nil {
		logger.Warn("Failed to list keys", "table", s.table, "error", err)
		return nil
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			logger.Warn("Failed to scan key", "table", s.table, "error", err)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
