// internal/store/memory.go
//
// In-memory implementation of Store.
//
// Characteristics:
//   - Values are copied on the way in and out, so callers can reuse buffers.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process exits.

package store

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore is a map-based Store.
type MemoryStore struct {
	mu     sync.RWMutex      // guards values
	values map[string][]byte // keyed by record key
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Save adds or replaces the value under key.
func (m *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = bytes.Clone(value)
	return nil
}

// Load returns a copy of the value under key or ErrNotFound.
func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return bytes.Clone(v), nil
	}
	return nil, ErrNotFound
}

// Clear deletes key.
func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
