package storage

import (
	"context"

	"market-model-lab/internal/dataset"
)

// Dir names a directory role under the data root. Every dataset file
// lives in exactly one role directory.
type Dir uint8

const (
	DirSplits      Dir = iota // raw and cleaned train/test splits
	DirCurrent                // raw and processed current datasets
	DirNormalized             // normalized splits ready for selection
	DirPredictions            // prediction outputs
	DirReports                // run summary artifacts
)

func (d Dir) String() string {
	switch d {
	case DirSplits:
		return "splits"
	case DirCurrent:
		return "current"
	case DirNormalized:
		return "normalized"
	case DirPredictions:
		return "predictions"
	case DirReports:
		return "reports"
	default:
		return "unknown"
	}
}

// DatasetStore provides access to dataset files grouped by directory
// role. Names are plain file names within the role directory.
type DatasetStore interface {
	// List returns the file names in dir ending with suffix, sorted
	// ascending. A missing role directory is an error.
	List(ctx context.Context, dir Dir, suffix string) ([]string, error)

	// Read loads the named dataset. Returns ErrNotFound if it does not exist.
	Read(ctx context.Context, dir Dir, name string) (*dataset.Frame, error)

	// Write stores the named dataset, replacing any existing file.
	Write(ctx context.Context, dir Dir, name string, f *dataset.Frame) error

	// Exists reports whether the named dataset is present.
	Exists(ctx context.Context, dir Dir, name string) (bool, error)
}
