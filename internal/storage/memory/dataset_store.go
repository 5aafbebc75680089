package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"market-model-lab/internal/dataset"
	"market-model-lab/internal/storage"
)

// DatasetStore is an in-memory implementation of storage.DatasetStore.
type DatasetStore struct {
	mu   sync.RWMutex
	data map[storage.Dir]map[string]*dataset.Frame
}

// NewDatasetStore creates a new in-memory dataset store with every
// directory role present and empty.
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{
		data: make(map[storage.Dir]map[string]*dataset.Frame),
	}
}

// List returns the file names in dir ending with suffix, sorted ascending.
func (s *DatasetStore) List(_ context.Context, dir storage.Dir, suffix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.data[dir] {
		if strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read loads the named dataset. Returns ErrNotFound if it does not exist.
func (s *DatasetStore) Read(_ context.Context, dir storage.Dir, name string) (*dataset.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.data[dir][name]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy to prevent external mutation
	return f.Clone(), nil
}

// Write stores the named dataset, replacing any existing entry.
func (s *DatasetStore) Write(_ context.Context, dir storage.Dir, name string, f *dataset.Frame) error {
	if f == nil || name == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[dir] == nil {
		s.data[dir] = make(map[string]*dataset.Frame)
	}

	// Store a copy to prevent external mutation
	s.data[dir][name] = f.Clone()
	return nil
}

// Exists reports whether the named dataset is present.
func (s *DatasetStore) Exists(_ context.Context, dir storage.Dir, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.data[dir][name]
	return exists, nil
}

// Verify interface compliance at compile time.
var _ storage.DatasetStore = (*DatasetStore)(nil)
