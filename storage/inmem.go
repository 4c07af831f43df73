package storage

import (
	"sync"

	"github.com/itportal/go-portal-client/internal/errors"
)

// InMemoryStore is an ephemeral Store scoped to the process, the Go
// counterpart of a browser tab's session storage. Each instance is an
// isolated namespace: two stores never observe each other's keys.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemoryStore creates a new empty in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		values: make(map[string]string),
	}
}

// Get retrieves the value for a key
func (s *InMemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", errors.ErrKeyNotFound
	}
	return value, nil
}

// Set creates or replaces the value for a key
func (s *InMemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Delete removes a key
func (s *InMemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
