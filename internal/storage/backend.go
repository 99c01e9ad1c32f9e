// Package storage persists the task collection as a single named record and
// exposes the task store on top of it.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RecordKey is the name of the record holding the task collection.
const RecordKey = "tomorrow_reminder_tasks"

// ErrNotFound means the named record does not exist yet. A fresh install is
// not a storage fault; callers treat it as an empty collection.
var ErrNotFound = errors.New("storage: record not found")

// Backend stores one opaque payload under a fixed record name.
type Backend interface {
	Load() ([]byte, error)
	Save(payload []byte) error
}

// FileBackend keeps the record in a single file on disk.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", f.path, err)
	}
	return data, nil
}

func (f *FileBackend) Save(payload []byte) error {
	dir := filepath.Dir(f.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(f.path, payload, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", f.path, err)
	}
	return nil
}

// MemoryBackend holds the record in memory. Used in tests and as the
// degraded fallback when no durable medium is available.
type MemoryBackend struct {
	mu      sync.Mutex
	payload []byte
	set     bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Seed pre-populates the record, e.g. with a malformed payload in tests.
func (m *MemoryBackend) Seed(payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = append([]byte(nil), payload...)
	m.set = true
}

func (m *MemoryBackend) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.payload...), nil
}

func (m *MemoryBackend) Save(payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = append([]byte(nil), payload...)
	m.set = true
	return nil
}

// FaultyBackend wraps a Backend and injects failures on demand, so tests can
// observe the store's degrade-and-log behavior.
type FaultyBackend struct {
	Inner   Backend
	LoadErr error
	SaveErr error
}

func (f *FaultyBackend) Load() ([]byte, error) {
	if f.LoadErr != nil {
		return nil, f.LoadErr
	}
	return f.Inner.Load()
}

func (f *FaultyBackend) Save(payload []byte) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	return f.Inner.Save(payload)
}
