package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"market-model-lab/internal/config"
	"market-model-lab/internal/dataset"
	"market-model-lab/internal/storage"
)

// Store is a storage.DatasetStore backed by CSV files under one
// directory per role.
type Store struct {
	dirs map[storage.Dir]string
}

// New returns a store with an explicit directory per role.
func New(splits, current, normalized, predictions, reports string) *Store {
	return &Store{dirs: map[storage.Dir]string{
		storage.DirSplits:      splits,
		storage.DirCurrent:     current,
		storage.DirNormalized:  normalized,
		storage.DirPredictions: predictions,
		storage.DirReports:     reports,
	}}
}

// FromConfig maps the configured directory layout into a store.
func FromConfig(cfg *config.Config) *Store {
	return New(cfg.SplitsDir(), cfg.CurrentDir(), cfg.NormalizedDir(),
		cfg.PredictionsDir(), cfg.ReportsDir())
}

// Compile-time interface check.
var _ storage.DatasetStore = (*Store)(nil)

func (s *Store) path(dir storage.Dir, name string) (string, error) {
	root, ok := s.dirs[dir]
	if !ok {
		return "", fmt.Errorf("directory role %s: %w", dir, storage.ErrInvalidInput)
	}
	return filepath.Join(root, name), nil
}

// List returns the file names under the role directory ending with
// suffix, in the sorted order os.ReadDir guarantees.
func (s *Store) List(ctx context.Context, dir storage.Dir, suffix string) ([]string, error) {
	root, ok := s.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("directory role %s: %w", dir, storage.ErrInvalidInput)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Read loads the named CSV into a Frame.
func (s *Store) Read(ctx context.Context, dir storage.Dir, name string) (*dataset.Frame, error) {
	path, err := s.path(dir, name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s/%s: %w", dir, name, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s/%s: %w", dir, name, err)
	}
	defer file.Close()

	f, err := dataset.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s/%s: %w", dir, name, err)
	}
	return f, nil
}

// Write stores the Frame as a CSV file, creating the role directory
// when needed and replacing any existing file.
func (s *Store) Write(ctx context.Context, dir storage.Dir, name string, f *dataset.Frame) error {
	if f == nil {
		return fmt.Errorf("nil frame: %w", storage.ErrInvalidInput)
	}
	path, err := s.path(dir, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", dir, name, err)
	}
	if err := dataset.WriteCSV(file, f); err != nil {
		file.Close()
		return fmt.Errorf("write %s/%s: %w", dir, name, err)
	}
	return file.Close()
}

// Exists reports whether the named file is present.
func (s *Store) Exists(ctx context.Context, dir storage.Dir, name string) (bool, error) {
	path, err := s.path(dir, name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
