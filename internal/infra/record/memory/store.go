// Package memory implements an in-memory record store used for tests and for
// execution contexts without a durable medium.
package memory

import (
	"context"
	"sync"

	"readingcore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.RecordStore = (*Store)(nil)

// Store keeps blobs in process memory. Contents are lost on process exit,
// which matches the degraded no-medium mode of the engine.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New returns an empty in-memory record store.
func New() *Store { return &Store{blobs: make(map[string][]byte)} }

// Driver returns the record driver identifier.
func (s *Store) Driver() domain.RecordDriver { return domain.RecordMemory }

// Load returns a copy of the blob stored under key.
func (s *Store) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, true, nil
}

// Save stores a copy of payload under key.
func (s *Store) Save(_ context.Context, key string, payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.mu.Lock()
	s.blobs[key] = cp
	s.mu.Unlock()
	return nil
}

// Remove deletes the blob under key.
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored blobs. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
