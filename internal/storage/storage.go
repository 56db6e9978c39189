// Package storage is the client's local storage: a small string key/value store
// that survives restarts, holding the session blob and the demo mode flag.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Keys used by the client.
const (
	AuthKey     = "evtb_auth"
	DemoModeKey = "evtb_demo_mode"
)

// ErrCorrupt is returned when a stored value cannot be decoded.
var ErrCorrupt = errors.New("storage: corrupt value")

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// FileStore keeps one file per key inside a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("storage.NewFileStore: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, fmt.Errorf("storage.Get: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage.Get: %w", err)
	}
	return string(data), true, nil
}

// Set writes the value atomically: temp file in the same dir, then rename.
func (s *FileStore) Set(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return fmt.Errorf("storage.Set: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return fmt.Errorf("storage.Set: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("storage.Set: write: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("storage.Set: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage.Set: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("storage.Set: rename: %w", err)
	}
	return nil
}

func (s *FileStore) Remove(key string) error {
	p, err := s.path(key)
	if err != nil {
		return fmt.Errorf("storage.Remove: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage.Remove: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
