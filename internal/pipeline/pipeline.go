// Package pipeline chains the batch stages end to end: optional
// cleaning, feature engineering, normalization and model selection,
// with a persisted summary at the end.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"market-model-lab/internal/cleaning"
	"market-model-lab/internal/config"
	"market-model-lab/internal/features"
	"market-model-lab/internal/normalize"
	"market-model-lab/internal/reporting"
	"market-model-lab/internal/selection"
	"market-model-lab/internal/storage"
)

// summaryFile is the report written after a run with selected models.
const summaryFile = "summary.csv"

// Options wire a pipeline run.
type Options struct {
	Config *config.Config
	Store  storage.DatasetStore
	Logger *logrus.Logger

	// Clean runs the cleaning stage before feature engineering.
	Clean bool
	// FillStrategy is the cleaning fill strategy; empty means median.
	FillStrategy cleaning.Strategy
}

// Pipeline executes the batch stages sequentially over one store.
type Pipeline struct {
	cfg   *config.Config
	store storage.DatasetStore
	log   *logrus.Logger
	clean bool
	fill  cleaning.Strategy
}

// New builds a pipeline from options.
func New(opts Options) *Pipeline {
	fill := opts.FillStrategy
	if fill == "" {
		fill = cleaning.StrategyMedian
	}
	return &Pipeline{
		cfg:   opts.Config,
		store: opts.Store,
		log:   opts.Logger,
		clean: opts.Clean,
		fill:  fill,
	}
}

// RunResult aggregates every stage's outcome in processing order.
// Cleaning is nil unless the cleaning stage ran.
type RunResult struct {
	Cleaning  *cleaning.RunResult
	Features  *features.RunResult
	Normalize *normalize.RunResult
	Selection *selection.RunResult
}

// Run executes the stages in order. A stage-level failure aborts the
// run; per-dataset failures are collected inside each stage's result
// and never stop the remaining stages.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	if p.clean {
		cleaned, err := cleaning.NewRunner(p.cfg, p.store, p.log).WithStrategy(p.fill).Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("clean stage: %w", err)
		}
		result.Cleaning = cleaned
	}

	engineered, err := features.NewRunner(p.cfg, p.store, p.log).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("features stage: %w", err)
	}
	result.Features = engineered

	normalized, err := normalize.NewRunner(p.cfg, p.store, p.log).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("normalize stage: %w", err)
	}
	result.Normalize = normalized

	selected, err := selection.NewRunner(p.cfg, p.store, p.log).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("predict stage: %w", err)
	}
	result.Selection = selected

	if err := p.writeSummary(ctx, selected.Entries); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	return result, nil
}

// writeSummary persists the run summary. A run without selected
// models writes nothing.
func (p *Pipeline) writeSummary(ctx context.Context, entries []selection.SummaryEntry) error {
	if len(entries) == 0 {
		p.log.Info("no models evaluated or predictions made")
		return nil
	}
	if err := p.store.Write(ctx, storage.DirReports, summaryFile, reporting.SummaryFrame(entries)); err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{
		"stage":    "summary",
		"file":     summaryFile,
		"datasets": len(entries),
	}).Info("run summary saved")
	return nil
}
