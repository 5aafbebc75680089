// Package ingestion grows per-dataset current files one row at a time.
package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"market-model-lab/internal/config"
	"market-model-lab/internal/dataset"
	"market-model-lab/internal/storage"
)

// RowSource supplies the cell value for each column of a row being
// appended. Implementations plug in whatever collection mechanism a
// deployment uses; the default leaves every cell missing so values can
// be backfilled before the next pipeline run.
type RowSource interface {
	Value(column string) dataset.Value
}

// MissingSource is the default RowSource: every cell is missing.
type MissingSource struct{}

// Value returns the missing marker for any column.
func (MissingSource) Value(string) dataset.Value { return dataset.Missing }

// Appender appends schema-aligned rows to per-dataset current files.
type Appender struct {
	cfg    *config.Config
	store  storage.DatasetStore
	log    *logrus.Logger
	source RowSource
}

// NewAppender returns an appender using the missing-value source.
func NewAppender(cfg *config.Config, store storage.DatasetStore, log *logrus.Logger) *Appender {
	return &Appender{cfg: cfg, store: store, log: log, source: MissingSource{}}
}

// WithSource replaces the row source and returns the appender.
func (a *Appender) WithSource(source RowSource) *Appender {
	a.source = source
	return a
}

// Append adds one row built from the source to the dataset's current
// file, creating the file with the schema columns when it does not
// exist yet and adding any schema columns an existing file lacks.
// Columns outside the schema keep their data and get a missing cell.
// Returns the row count after the append.
func (a *Appender) Append(ctx context.Context, base string, schema []string) (int, error) {
	if base == "" {
		return 0, fmt.Errorf("empty dataset name: %w", storage.ErrInvalidInput)
	}
	if len(schema) == 0 {
		return 0, fmt.Errorf("empty schema: %w", storage.ErrInvalidInput)
	}

	name := base + a.cfg.Files.CurrentSuffix
	f, err := a.store.Read(ctx, storage.DirCurrent, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		f = dataset.New(schema...)
		a.log.WithFields(logrus.Fields{
			"stage": "ingest",
			"file":  name,
		}).Info("creating new current file")
	case err != nil:
		return 0, err
	default:
		for _, col := range schema {
			if f.HasColumn(col) {
				continue
			}
			if err := f.SetColumn(col, make([]dataset.Value, f.NumRows())); err != nil {
				return 0, err
			}
		}
	}

	row := make(map[string]dataset.Value, len(schema))
	for _, col := range schema {
		row[col] = a.source.Value(col)
	}
	f.AppendRow(row)

	if err := a.store.Write(ctx, storage.DirCurrent, name, f); err != nil {
		return 0, err
	}
	a.log.WithFields(logrus.Fields{
		"stage": "ingest",
		"file":  name,
		"rows":  f.NumRows(),
	}).Info("appended new row")
	return f.NumRows(), nil
}
