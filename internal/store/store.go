// internal/store/store.go
//
// Key-value persistence used by the game session.
//
// The session keeps three records: player statistics, the active dataset and
// the raw text the dataset was parsed from. Values are opaque bytes; encoding
// is the caller's concern. Backends:
//   - memory: process-local map (tests, throwaway sessions).
//   - file:   one file per key in a directory.
//   - sql:    a kv table in SQLite, PostgreSQL or MySQL.

package store

import (
	"context"
	"errors"
	"fmt"
)

// Keys used by the game session.
const (
	KeyStats   = "studywordle_stats"
	KeyDataset = "studywordle_data"
	KeyRawData = "studywordle_raw_data"
)

// ErrNotFound is returned by Load when a key has no value.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface.
type Store interface {
	// Save persists or replaces the value under key.
	Save(ctx context.Context, key string, value []byte) error

	// Load returns the value under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Clear removes key. Clearing a missing key is not an error.
	Clear(ctx context.Context, key string) error
}

// Open builds a Store for a configured driver:
//   - "memory":                    path is ignored.
//   - "file":                      path is the directory.
//   - "sqlite"/"sqlite3":          path is the database file.
//   - "sqlite-pure":               same, on the cgo-free driver.
//   - "postgres"/"mysql":          path is the DSN.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		f, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "sqlite", "sqlite3", "sqlite-pure", "postgres", "postgresql", "mysql":
		db, err := OpenSQL(driver, path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
