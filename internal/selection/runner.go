package selection

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"market-model-lab/internal/config"
	"market-model-lab/internal/dataset"
	"market-model-lab/internal/discovery"
	"market-model-lab/internal/model"
	"market-model-lab/internal/storage"
)

// Prediction outputs are named after the dataset they derive from.
const (
	predColumn        = "Pred"
	testPredSuffix    = "TestPred.csv"
	currentPredSuffix = "CurrentPred.csv"
)

// SummaryEntry is one dataset's line in the end-of-run summary.
// CurrentAccuracy is nil when the current split was absent, unusable
// or carried no target column. Accuracies are rounded to 4 decimals.
type SummaryEntry struct {
	Dataset         string
	TestAccuracy    float64
	CurrentAccuracy *float64
	Features        []string
}

// RunResult aggregates one selection pass.
type RunResult struct {
	Entries  []SummaryEntry
	Selected int
	Skipped  int
	Errors   []string
}

// Runner drives model selection over every normalized dataset: subset
// search on the train/test splits, prediction files for the test and
// current splits, and a summary entry per selected model.
type Runner struct {
	cfg      *config.Config
	store    storage.DatasetStore
	log      *logrus.Logger
	searcher *Searcher
}

// NewRunner returns a selection runner bound to the configured target
// column and subset-size bounds.
func NewRunner(cfg *config.Config, store storage.DatasetStore, log *logrus.Logger) *Runner {
	return &Runner{
		cfg:   cfg,
		store: store,
		log:   log,
		searcher: NewSearcher(cfg.Model.TargetColumn, cfg.Model.MinSubsetSize,
			cfg.Model.MaxSubsetSize, cfg.Model.MaxIterations),
	}
}

// Run selects a model for every dataset with a normalized training
// split. Datasets that cannot be modeled are skipped with a log line;
// read or write failures are recorded per dataset and never abort the
// remaining ones.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	names, err := r.store.List(ctx, storage.DirNormalized, r.cfg.Files.TrainSuffix)
	if err != nil {
		return nil, fmt.Errorf("list normalized datasets: %w", err)
	}

	result := &RunResult{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(name, r.cfg.Files.TrainSuffix)

		entry, skipReason, err := r.selectDataset(ctx, base)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"stage":   "predict",
				"dataset": base,
			}).WithError(err).Error("model selection failed, skipping dataset")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", base, err))
			continue
		}
		if skipReason != "" {
			r.log.WithFields(logrus.Fields{
				"stage":   "predict",
				"dataset": base,
			}).Warnf("skipping dataset: %s", skipReason)
			result.Skipped++
			continue
		}
		result.Entries = append(result.Entries, *entry)
		result.Selected++
	}

	r.log.WithFields(logrus.Fields{
		"stage":    "predict",
		"selected": result.Selected,
		"skipped":  result.Skipped,
		"failed":   len(result.Errors),
	}).Info("model selection complete")
	return result, nil
}

// selectDataset runs the search for one dataset. A non-empty skip
// reason means the dataset cannot be modeled; an error means a storage
// operation failed.
func (r *Runner) selectDataset(ctx context.Context, base string) (*SummaryEntry, string, error) {
	testName := base + r.cfg.Files.TestSuffix
	hasTest, err := r.store.Exists(ctx, storage.DirNormalized, testName)
	if err != nil {
		return nil, "", err
	}
	if !hasTest {
		return nil, "no matching test split", nil
	}

	train, err := r.store.Read(ctx, storage.DirNormalized, base+r.cfg.Files.TrainSuffix)
	if err != nil {
		return nil, "", err
	}
	test, err := r.store.Read(ctx, storage.DirNormalized, testName)
	if err != nil {
		return nil, "", err
	}

	target := r.cfg.Model.TargetColumn
	if !train.HasColumn(target) || !test.HasColumn(target) {
		return nil, fmt.Sprintf("target column %s missing", target), nil
	}

	candidates := discovery.Candidates(train.Columns(), discovery.Rules{
		Exclude:   r.cfg.Features.ExcludeColumns,
		LagSuffix: r.cfg.Features.LagSuffix,
		Prefixes:  r.cfg.Features.CandidatePrefixes,
	})
	if len(candidates) == 0 {
		return nil, "no candidate feature columns", nil
	}

	r.log.WithFields(logrus.Fields{
		"stage":      "predict",
		"dataset":    base,
		"candidates": len(candidates),
	}).Info("evaluating feature combinations")

	best := r.searcher.Search(train, test, candidates)
	if best == nil {
		return nil, "no valid feature combinations found", nil
	}
	r.log.WithFields(logrus.Fields{
		"stage":     "predict",
		"dataset":   base,
		"features":  strings.Join(best.Features, ","),
		"accuracy":  best.Accuracy,
		"evaluated": best.Evaluated,
		"skipped":   best.Skipped,
	}).Info("best feature subset selected")

	xTest, err := featureMatrix(test, best.Features)
	if err != nil {
		return nil, "", err
	}
	testPred, err := best.Model.Predict(xTest)
	if err != nil {
		return nil, "", err
	}
	if err := r.writeScored(ctx, base+testPredSuffix, test, testPred); err != nil {
		return nil, "", err
	}

	entry := &SummaryEntry{
		Dataset:      base,
		TestAccuracy: round4(best.Report.Accuracy),
		Features:     best.Features,
	}
	if err := r.predictCurrent(ctx, base, best, entry); err != nil {
		return nil, "", err
	}
	return entry, "", nil
}

// predictCurrent writes predictions for the normalized current split
// when one exists and carries every winning feature, and fills in the
// entry's current accuracy when the split also carries the target.
func (r *Runner) predictCurrent(ctx context.Context, base string, best *Result, entry *SummaryEntry) error {
	currentName := base + r.cfg.Files.CurrentNormSuffix
	hasCurrent, err := r.store.Exists(ctx, storage.DirNormalized, currentName)
	if err != nil {
		return err
	}
	if !hasCurrent {
		return nil
	}
	current, err := r.store.Read(ctx, storage.DirNormalized, currentName)
	if err != nil {
		return err
	}

	if !hasAll(current, best.Features) {
		r.log.WithFields(logrus.Fields{
			"stage":   "predict",
			"dataset": base,
		}).Warn("current split lacks the selected features, skipping current predictions")
		return nil
	}
	xCurrent, err := featureMatrix(current, best.Features)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"stage":   "predict",
			"dataset": base,
		}).WithError(err).Warn("current split unusable, skipping current predictions")
		return nil
	}
	pred, err := best.Model.Predict(xCurrent)
	if err != nil {
		return err
	}
	if err := r.writeScored(ctx, base+currentPredSuffix, current, pred); err != nil {
		return err
	}

	target := r.cfg.Model.TargetColumn
	if !current.HasColumn(target) {
		return nil
	}
	yCurrent, err := labelVector(current, target)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"stage":   "predict",
			"dataset": base,
		}).WithError(err).Warn("current target column unusable, leaving current accuracy unknown")
		return nil
	}
	acc := round4(model.Accuracy(yCurrent, pred))
	entry.CurrentAccuracy = &acc
	return nil
}

// writeScored writes a copy of the frame plus a prediction column to
// the predictions directory.
func (r *Runner) writeScored(ctx context.Context, name string, f *dataset.Frame, pred []float64) error {
	out := f.Clone()
	cells := make([]dataset.Value, len(pred))
	for i, p := range pred {
		cells[i] = dataset.Number(p)
	}
	if err := out.SetColumn(predColumn, cells); err != nil {
		return err
	}
	if err := r.store.Write(ctx, storage.DirPredictions, name, out); err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{
		"stage": "predict",
		"file":  name,
		"rows":  out.NumRows(),
	}).Info("predictions saved")
	return nil
}

// round4 keeps summary accuracies at 4 decimals.
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
