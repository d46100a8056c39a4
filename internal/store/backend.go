// Package store provides the key-value persistence contract behind all
// newsintel state, with file and SQLite backends, plus typed stores for each
// record kind.
//
// The contract deliberately has no error path on reads: a missing, corrupt,
// or unreadable record is reported as absent, logged, and handled by callers
// as missing dependency data rather than a failure.
package store

// Backend is the minimal key-value contract every record store runs on.
// Records must round-trip through JSON; no other encoding fidelity is
// assumed.
type Backend interface {
	// Save upserts a JSON-serializable record under key.
	Save(key string, record any) error

	// Load unmarshals the record stored under key into out and reports
	// whether it was found. Corrupt or unreadable records count as absent.
	Load(key string, out any) bool

	// Exists reports whether a record is stored under key.
	Exists(key string) bool

	// ListKeys returns all stored keys with the given prefix ("" for all),
	// in lexicographic order.
	ListKeys(prefix string) []string
}
