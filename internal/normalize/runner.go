package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"market-model-lab/internal/config"
	"market-model-lab/internal/dataset"
	"market-model-lab/internal/storage"
)

// origSuffix marks pre-normalization copies kept for inspection.
const origSuffix = "Orig"

// origCopies is how many intersecting columns (in normalization list
// order) are copied before transforming the current split.
const origCopies = 3

// Runner normalizes each dataset's current split against the range of
// its training split, and writes normalized train/test splits for the
// selection stage.
type Runner struct {
	cfg   *config.Config
	store storage.DatasetStore
	log   *logrus.Logger
}

// NewRunner creates a normalization runner.
func NewRunner(cfg *config.Config, store storage.DatasetStore, log *logrus.Logger) *Runner {
	return &Runner{cfg: cfg, store: store, log: log}
}

// RunResult summarizes one normalization pass.
type RunResult struct {
	Normalized int
	Skipped    int
	Errors     []string
}

// Run normalizes every dataset with a training split. Per-dataset
// failures are logged, recorded and skipped.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}
	names, err := r.store.List(ctx, storage.DirSplits, r.cfg.Files.TrainSuffix)
	if err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(name, r.cfg.Files.TrainSuffix)
		skipReason, err := r.normalizeDataset(ctx, base)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"stage":   "normalize",
				"dataset": base,
			}).WithError(err).Error("normalization failed, skipping dataset")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", base, err))
			continue
		}
		if skipReason != "" {
			r.log.WithFields(logrus.Fields{
				"stage":   "normalize",
				"dataset": base,
			}).Warn(skipReason)
			result.Skipped++
			continue
		}
		result.Normalized++
	}

	r.log.WithFields(logrus.Fields{
		"stage":      "normalize",
		"normalized": result.Normalized,
		"skipped":    result.Skipped,
		"failed":     len(result.Errors),
	}).Info("normalization pass complete")
	return result, nil
}

// normalizeDataset fits on the training split and applies the fitted
// scaler to the processed current split, the training split itself and
// the test split when present. A non-empty skip reason means the
// dataset was left unnormalized without error.
func (r *Runner) normalizeDataset(ctx context.Context, base string) (string, error) {
	currentName := base + r.cfg.Files.CurrentProcessedSuffix
	hasCurrent, err := r.store.Exists(ctx, storage.DirCurrent, currentName)
	if err != nil {
		return "", err
	}
	if !hasCurrent {
		return "no current processed file", nil
	}

	train, err := r.store.Read(ctx, storage.DirSplits, base+r.cfg.Files.TrainSuffix)
	if err != nil {
		return "", err
	}
	availTrain := presentColumns(train, r.cfg.Features.NormalizeColumns)
	if len(availTrain) == 0 {
		return "no normalizable columns in train", nil
	}

	scaler := FitMinMax(train, availTrain)

	current, err := r.store.Read(ctx, storage.DirCurrent, currentName)
	if err != nil {
		return "", err
	}
	availCurrent := presentColumns(current, availTrain)
	if len(availCurrent) == 0 {
		return "no overlapping normalization columns in current", nil
	}

	// Preserve a few originals before normalization.
	for _, name := range availCurrent[:min(origCopies, len(availCurrent))] {
		col, _ := current.Column(name)
		copied := make([]dataset.Value, len(col))
		copy(copied, col)
		if err := current.SetColumn(name+origSuffix, copied); err != nil {
			return "", err
		}
	}

	if err := scaler.Transform(current, availCurrent); err != nil {
		return "", err
	}
	if err := r.store.Write(ctx, storage.DirNormalized, base+r.cfg.Files.CurrentNormSuffix, current); err != nil {
		return "", err
	}

	// The selection stage consumes normalized train/test splits, scaled
	// with the same train-fitted ranges.
	if err := scaler.Transform(train, availTrain); err != nil {
		return "", err
	}
	if err := r.store.Write(ctx, storage.DirNormalized, base+r.cfg.Files.TrainSuffix, train); err != nil {
		return "", err
	}

	testName := base + r.cfg.Files.TestSuffix
	hasTest, err := r.store.Exists(ctx, storage.DirSplits, testName)
	if err != nil {
		return "", err
	}
	if hasTest {
		test, err := r.store.Read(ctx, storage.DirSplits, testName)
		if err != nil {
			return "", err
		}
		availTest := presentColumns(test, availTrain)
		if err := scaler.Transform(test, availTest); err != nil {
			return "", err
		}
		if err := r.store.Write(ctx, storage.DirNormalized, testName, test); err != nil {
			return "", err
		}
	}

	return "", nil
}

// presentColumns returns the names from wanted that exist in the frame,
// preserving wanted's order.
func presentColumns(f *dataset.Frame, wanted []string) []string {
	var out []string
	for _, name := range wanted {
		if f.HasColumn(name) {
			out = append(out, name)
		}
	}
	return out
}
