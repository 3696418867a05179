package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps collections in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load implements CollectionStore.
func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	if !ok {
		return nil, missing(key)
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// Save implements CollectionStore.
func (s *MemoryStore) Save(ctx context.Context, key string, payload []byte) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.mu.Lock()
	s.data[key] = stored
	s.mu.Unlock()
	return nil
}
