// Package memory provides an in-memory key-value store for the local cache
package memory

import (
	"context"
	"sync"

	"github.com/alchemorsel/recipebox/internal/ports/outbound"
)

// KVStore implements outbound.KeyValueStore over a map. With a positive
// quota it refuses any Set that would push the total stored bytes (keys plus
// values) above it, the way a browser origin's storage does.
type KVStore struct {
	data  map[string][]byte
	quota int
	used  int
	mutex sync.RWMutex
}

// NewKVStore creates an empty store. quota <= 0 means unlimited.
func NewKVStore(quota int) *KVStore {
	return &KVStore{
		data:  make(map[string][]byte),
		quota: quota,
	}
}

var _ outbound.KeyValueStore = (*KVStore)(nil)

// Get retrieves a copy of the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.data[key]
	if !exists {
		return nil, outbound.ErrKeyNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value under key
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	used := s.used + len(key) + len(value)
	if old, exists := s.data[key]; exists {
		used -= len(key) + len(old)
	}
	if s.quota > 0 && used > s.quota {
		return outbound.ErrQuotaExceeded
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	s.used = used
	return nil
}

// Delete removes a key; deleting an absent key succeeds
func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if old, exists := s.data[key]; exists {
		s.used -= len(key) + len(old)
		delete(s.data, key)
	}
	return nil
}

// Used reports the bytes currently stored
func (s *KVStore) Used() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.used
}
