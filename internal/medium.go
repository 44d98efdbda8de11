package internal

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Backend names accepted by OpenMedium
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Medium is a durable text key/value store shared by every identity
type Medium interface {
	// Get returns the value for key; ok is false when the key is absent
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	// Delete removes key; deleting an absent key is not an error
	Delete(key string) error
	// Keys lists stored keys starting with prefix, sorted
	Keys(prefix string) ([]string, error)
}

// MemoryMedium keeps everything in a map; used by tests and the "memory" backend
type MemoryMedium struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryMedium creates an empty in-memory medium
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{data: make(map[string]string)}
}

// Get implements Medium
func (m *MemoryMedium) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

// Set implements Medium
func (m *MemoryMedium) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete implements Medium
func (m *MemoryMedium) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys implements Medium
func (m *MemoryMedium) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// OpenMedium opens the medium for backend under paths.
// The returned close func must be called when the caller is done.
func OpenMedium(backend string, paths StoragePaths) (Medium, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		db, err := OpenDatabase(paths.DatabasePath)
		if err != nil {
			return nil, nil, &StorageError{Key: paths.DatabasePath, Op: "open", Err: err}
		}
		LogDebug("Opened sqlite medium at %s", paths.DatabasePath)
		return NewSQLiteMedium(db), db.Close, nil
	case BackendFile:
		medium, err := NewFileMedium(paths.FilesDir)
		if err != nil {
			return nil, nil, &StorageError{Key: paths.FilesDir, Op: "open", Err: err}
		}
		LogDebug("Opened file medium at %s", paths.FilesDir)
		return medium, noop, nil
	case BackendMemory:
		LogDebug("Using in-memory medium; nothing will be persisted")
		return NewMemoryMedium(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend: %s (supported: sqlite, file, memory)", backend)
	}
}
