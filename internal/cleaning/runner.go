package cleaning

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"market-model-lab/internal/config"
	"market-model-lab/internal/dataset"
	"market-model-lab/internal/storage"
)

// Runner drives the cleaning stage over every train/test split on disk,
// writing a *Cleaned.csv sibling per input file.
type Runner struct {
	cfg      *config.Config
	store    storage.DatasetStore
	log      *logrus.Logger
	strategy Strategy
}

// NewRunner creates a cleaning runner with the median fill strategy.
func NewRunner(cfg *config.Config, store storage.DatasetStore, log *logrus.Logger) *Runner {
	return &Runner{cfg: cfg, store: store, log: log, strategy: StrategyMedian}
}

// WithStrategy overrides the fill strategy and returns the runner.
func (r *Runner) WithStrategy(strategy Strategy) *Runner {
	r.strategy = strategy
	return r
}

// RunResult summarizes one cleaning pass.
type RunResult struct {
	Cleaned int
	Errors  []string
}

// Run cleans every train and test split. Per-file failures are logged,
// recorded and skipped; only environment failures abort the pass.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}
	pairs := []struct{ in, out string }{
		{r.cfg.Files.TrainSuffix, r.cfg.Files.TrainCleanedSuffix},
		{r.cfg.Files.TestSuffix, r.cfg.Files.TestCleanedSuffix},
	}
	for _, p := range pairs {
		names, err := r.store.List(ctx, storage.DirSplits, p.in)
		if err != nil {
			return nil, fmt.Errorf("list splits: %w", err)
		}
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out := strings.TrimSuffix(name, p.in) + p.out
			if err := r.cleanFile(ctx, name, out); err != nil {
				r.log.WithFields(logrus.Fields{
					"stage": "clean",
					"file":  name,
				}).WithError(err).Error("cleaning failed, skipping file")
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
				continue
			}
			result.Cleaned++
		}
	}
	r.log.WithFields(logrus.Fields{
		"stage":   "clean",
		"cleaned": result.Cleaned,
		"failed":  len(result.Errors),
	}).Info("cleaning pass complete")
	return result, nil
}

func (r *Runner) cleanFile(ctx context.Context, name, out string) error {
	f, err := r.store.Read(ctx, storage.DirSplits, name)
	if err != nil {
		return err
	}

	CoerceDates(f, []string{r.cfg.Features.DateColumn})
	CoerceNumerics(f, numericLikeColumns(f, r.cfg.Features.DateColumn))
	f = DropDuplicates(f)
	f = DropEmptyRows(f)
	if err := Fill(f, r.strategy, nil); err != nil {
		return err
	}

	if missing := ValidateColumns(f, []string{r.cfg.Model.TargetColumn}); len(missing) > 0 {
		r.log.WithFields(logrus.Fields{
			"stage":   "clean",
			"file":    name,
			"missing": missing,
		}).Warn("required columns absent")
	}

	return r.store.Write(ctx, storage.DirSplits, out, f)
}

// numericLikeColumns returns the columns carrying at least one number
// cell, excluding the date column. Pure text columns are left alone so
// numeric coercion cannot wipe them.
func numericLikeColumns(f *dataset.Frame, dateCol string) []string {
	var out []string
	for _, name := range f.Columns() {
		if name == dateCol {
			continue
		}
		col, _ := f.Column(name)
		for _, v := range col {
			if _, ok := v.Float(); ok {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
