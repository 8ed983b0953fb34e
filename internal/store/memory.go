package store

import (
	"context"
	"fmt"
	"sync"

	"nightlies/internal/model"
)

// MemoryStore keeps entries in process. Used for development and as the test fake.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
	reads   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string, kind model.Kind) (*Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++

	data, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	return valueOf(data, kind), nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

// Reads reports how many Get calls the store has served.
func (s *MemoryStore) Reads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads
}

func (s *MemoryStore) Close() error { return nil }
