package storage

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/itportal/go-portal-client/internal/errors"
	yaml "gopkg.in/yaml.v3"
)

// FileStore is a durable Store persisted as a yaml file, the Go
// counterpart of a browser's per-origin local storage. The file holds
// credentials, so it is created with owner-only permissions.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the given file path. The file
// and its parent directory are created lazily on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get retrieves the value for a key
func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", errors.ErrKeyNotFound
	}
	return value, nil
}

// Set creates or replaces the value for a key
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// Delete removes a key
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *FileStore) load() (map[string]string, error) {
	buf, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrapf(err, "[FileStore load] reading %s", s.path)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(buf, &values); err != nil {
		return nil, errors.Wrapf(err, "[FileStore load] parsing %s", s.path)
	}
	return values, nil
}

func (s *FileStore) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), os.FileMode(0700)); err != nil {
		return errors.Wrapf(err, "[FileStore save] creating state dir")
	}

	buf, err := yaml.Marshal(values)
	if err != nil {
		return errors.Wrapf(err, "[FileStore save] encoding state")
	}

	// Credentials live here; enforce 0600 even if the file pre-exists
	// with looser permissions.
	if err := os.WriteFile(s.path, buf, os.FileMode(0600)); err != nil {
		return errors.Wrapf(err, "[FileStore save] writing %s", s.path)
	}
	return os.Chmod(s.path, os.FileMode(0600))
}
