package features

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"market-model-lab/internal/config"
	"market-model-lab/internal/storage"
)

// Runner drives feature engineering over every raw current dataset,
// writing a *CurrentProcessed.csv sibling per input.
type Runner struct {
	cfg      *config.Config
	store    storage.DatasetStore
	log      *logrus.Logger
	engineer *Engineer
}

// NewRunner creates a feature engineering runner.
func NewRunner(cfg *config.Config, store storage.DatasetStore, log *logrus.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		store:    store,
		log:      log,
		engineer: NewEngineer(cfg.Features.DateColumn),
	}
}

// RunResult summarizes one feature engineering pass.
type RunResult struct {
	Processed int
	Errors    []string
}

// Run engineers every current dataset. Per-file failures are logged,
// recorded and skipped; only environment failures abort the pass.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}
	names, err := r.store.List(ctx, storage.DirCurrent, r.cfg.Files.CurrentSuffix)
	if err != nil {
		return nil, fmt.Errorf("list current: %w", err)
	}
	if len(names) == 0 {
		r.log.WithField("stage", "features").Info("no current files found, skipping")
		return result, nil
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(name, r.cfg.Files.CurrentSuffix)
		out := base + r.cfg.Files.CurrentProcessedSuffix
		if err := r.processFile(ctx, name, out); err != nil {
			r.log.WithFields(logrus.Fields{
				"stage":   "features",
				"dataset": base,
			}).WithError(err).Error("feature engineering failed, skipping file")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", base, err))
			continue
		}
		r.log.WithFields(logrus.Fields{
			"stage": "features",
			"file":  out,
		}).Info("processed file written")
		result.Processed++
	}
	return result, nil
}

func (r *Runner) processFile(ctx context.Context, name, out string) error {
	f, err := r.store.Read(ctx, storage.DirCurrent, name)
	if err != nil {
		return err
	}
	engineered, err := r.engineer.Apply(f)
	if err != nil {
		return err
	}
	return r.store.Write(ctx, storage.DirCurrent, out, engineered)
}
