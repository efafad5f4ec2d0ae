package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type memoryTokenEntry struct {
	value   []byte
	version int64
}

// MemoryTokenStore is the in-memory TokenStore. Writes are compare-and-swap
// on the stored version; readers get copies.
type MemoryTokenStore struct {
	mu      sync.Mutex
	entries map[string]memoryTokenEntry
}

// NewMemoryTokenStore builds an empty store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{entries: map[string]memoryTokenEntry{}}
}

func (s *MemoryTokenStore) Get(_ context.Context, key string) ([]byte, int64, bool, error) {
	if s == nil {
		return nil, 0, false, fmt.Errorf("core: token store is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, 0, false, fmt.Errorf("core: token store key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, 0, false, nil
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, entry.version, true, nil
}

func (s *MemoryTokenStore) Put(_ context.Context, key string, value []byte, expectedVersion int64) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("core: token store is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false, fmt.Errorf("core: token store key is required")
	}
	if expectedVersion < 0 {
		return false, fmt.Errorf("core: expected version must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, exists := s.entries[key]
	current := int64(0)
	if exists {
		current = entry.version
	}
	if current != expectedVersion {
		return false, nil
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.entries[key] = memoryTokenEntry{value: stored, version: current + 1}
	return true, nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, key string) error {
	if s == nil {
		return fmt.Errorf("core: token store is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("core: token store key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

var _ TokenStore = (*MemoryTokenStore)(nil)
