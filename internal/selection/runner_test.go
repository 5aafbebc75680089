package selection

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-model-lab/internal/config"
	"market-model-lab/internal/dataset"
	"market-model-lab/internal/storage"
	"market-model-lab/internal/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseDir: "data",
		Files: config.FilesConfig{
			TrainSuffix:       "Train.csv",
			TestSuffix:        "Test.csv",
			CurrentNormSuffix: "CurrentNorm.csv",
		},
		Features: config.FeaturesConfig{
			CandidatePrefixes: []string{"Feature", "Signal"},
			LagSuffix:         "Lag1",
			ExcludeColumns:    []string{"Date", "Open", "High", "Low", "Close", "Volume", "Target"},
		},
		Model: config.ModelConfig{
			TargetColumn:  "Target",
			MinSubsetSize: 2,
			MaxSubsetSize: 5,
			MaxIterations: 2000,
		},
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// seedSplits writes separable normalized train and test splits so the
// single candidate pair always yields a perfect model.
func seedSplits(t *testing.T, store *memory.DatasetStore, base string) {
	t.Helper()
	ctx := context.Background()

	train := dataset.New("Date", "FeatureGood", "FeatureNoise", "Target")
	require.NoError(t, train.SetColumn("Date", []dataset.Value{
		dataset.String("2024-01-01"), dataset.String("2024-01-02"),
		dataset.String("2024-01-03"), dataset.String("2024-01-04"),
		dataset.String("2024-01-05"), dataset.String("2024-01-06"),
		dataset.String("2024-01-07"), dataset.String("2024-01-08"),
	}))
	require.NoError(t, train.SetColumn("FeatureGood", numbered(0.05, 0.1, 0.15, 0.2, 0.8, 0.85, 0.9, 0.95)))
	require.NoError(t, train.SetColumn("FeatureNoise", numbered(0.3, 0.7, 0.4, 0.6, 0.5, 0.2, 0.8, 0.1)))
	require.NoError(t, train.SetColumn("Target", numbered(0, 0, 0, 0, 1, 1, 1, 1)))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, base+"Train.csv", train))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, base+"Test.csv", train.Clone()))
}

func TestRunnerSelectsAndWritesPredictions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()
	seedSplits(t, store, "AAA")

	result, err := NewRunner(testConfig(), store, testLogger()).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Selected)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Entries, 1)

	entry := result.Entries[0]
	assert.Equal(t, "AAA", entry.Dataset)
	assert.Equal(t, 1.0, entry.TestAccuracy)
	assert.Equal(t, []string{"FeatureGood", "FeatureNoise"}, entry.Features)
	assert.Nil(t, entry.CurrentAccuracy)

	scored, err := store.Read(ctx, storage.DirPredictions, "AAATestPred.csv")
	require.NoError(t, err)
	require.True(t, scored.HasColumn("Pred"))
	require.Equal(t, 8, scored.NumRows())
	for i := 0; i < scored.NumRows(); i++ {
		pred, ok := scored.At("Pred", i).Float()
		require.True(t, ok)
		target, _ := scored.At("Target", i).Float()
		assert.Equal(t, target, pred, "row %d", i)
	}

	hasCurrent, err := store.Exists(ctx, storage.DirPredictions, "AAACurrentPred.csv")
	require.NoError(t, err)
	assert.False(t, hasCurrent)
}

func TestRunnerSkipsDatasetWithoutTestSplit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()

	train := dataset.New("FeatureGood", "FeatureNoise", "Target")
	require.NoError(t, train.SetColumn("FeatureGood", numbered(0.1, 0.9)))
	require.NoError(t, train.SetColumn("FeatureNoise", numbered(0.5, 0.5)))
	require.NoError(t, train.SetColumn("Target", numbered(0, 1)))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, "AAATrain.csv", train))

	result, err := NewRunner(testConfig(), store, testLogger()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Selected)
	assert.Empty(t, result.Entries)
}

func TestRunnerSkipsDatasetWithoutTarget(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()

	f := dataset.New("FeatureGood", "FeatureNoise")
	require.NoError(t, f.SetColumn("FeatureGood", numbered(0.1, 0.9)))
	require.NoError(t, f.SetColumn("FeatureNoise", numbered(0.5, 0.5)))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, "AAATrain.csv", f))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, "AAATest.csv", f.Clone()))

	result, err := NewRunner(testConfig(), store, testLogger()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Entries)
}

func TestRunnerSkipsDatasetWithoutCandidates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()

	f := dataset.New("Alpha", "Beta", "Target")
	require.NoError(t, f.SetColumn("Alpha", numbered(0.1, 0.9)))
	require.NoError(t, f.SetColumn("Beta", numbered(0.2, 0.8)))
	require.NoError(t, f.SetColumn("Target", numbered(0, 1)))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, "AAATrain.csv", f))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, "AAATest.csv", f.Clone()))

	result, err := NewRunner(testConfig(), store, testLogger()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Entries)
}

func TestRunnerScoresCurrentSplit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()
	seedSplits(t, store, "AAA")

	current := dataset.New("FeatureGood", "FeatureNoise", "Target")
	require.NoError(t, current.SetColumn("FeatureGood", numbered(0.1, 0.9)))
	require.NoError(t, current.SetColumn("FeatureNoise", numbered(0.5, 0.5)))
	require.NoError(t, current.SetColumn("Target", numbered(0, 1)))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, "AAACurrentNorm.csv", current))

	result, err := NewRunner(testConfig(), store, testLogger()).Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	entry := result.Entries[0]
	require.NotNil(t, entry.CurrentAccuracy)
	assert.Equal(t, 1.0, *entry.CurrentAccuracy)

	scored, err := store.Read(ctx, storage.DirPredictions, "AAACurrentPred.csv")
	require.NoError(t, err)
	assert.True(t, scored.HasColumn("Pred"))
	assert.Equal(t, 2, scored.NumRows())
}

func TestRunnerCurrentWithoutTargetLeavesAccuracyUnknown(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()
	seedSplits(t, store, "AAA")

	current := dataset.New("FeatureGood", "FeatureNoise")
	require.NoError(t, current.SetColumn("FeatureGood", numbered(0.1, 0.9)))
	require.NoError(t, current.SetColumn("FeatureNoise", numbered(0.5, 0.5)))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, "AAACurrentNorm.csv", current))

	result, err := NewRunner(testConfig(), store, testLogger()).Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Nil(t, result.Entries[0].CurrentAccuracy)

	hasScored, err := store.Exists(ctx, storage.DirPredictions, "AAACurrentPred.csv")
	require.NoError(t, err)
	assert.True(t, hasScored)
}

func TestRunnerCurrentLackingFeaturesIsNotScored(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()
	seedSplits(t, store, "AAA")

	current := dataset.New("FeatureGood")
	require.NoError(t, current.SetColumn("FeatureGood", numbered(0.1, 0.9)))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, "AAACurrentNorm.csv", current))

	result, err := NewRunner(testConfig(), store, testLogger()).Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Nil(t, result.Entries[0].CurrentAccuracy)

	hasScored, err := store.Exists(ctx, storage.DirPredictions, "AAACurrentPred.csv")
	require.NoError(t, err)
	assert.False(t, hasScored, "current split without the selected features must not be scored")
}

func TestRunnerRoundsAccuracies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()
	seedSplits(t, store, "AAA")

	// Two of three evaluation rows agree with the model, so the
	// summary accuracy is 2/3 rounded to 4 decimals.
	test := dataset.New("FeatureGood", "FeatureNoise", "Target")
	require.NoError(t, test.SetColumn("FeatureGood", numbered(0.1, 0.9, 0.9)))
	require.NoError(t, test.SetColumn("FeatureNoise", numbered(0.5, 0.5, 0.5)))
	require.NoError(t, test.SetColumn("Target", numbered(0, 1, 0)))
	require.NoError(t, store.Write(ctx, storage.DirNormalized, "AAATest.csv", test))

	result, err := NewRunner(testConfig(), store, testLogger()).Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, 0.6667, result.Entries[0].TestAccuracy)
}

func TestRunnerCollectsPerDatasetFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()
	seedSplits(t, store, "AAA")
	seedSplits(t, store, "BAD")

	failing := &failingStore{DatasetStore: store, failName: "BADTrain.csv"}
	result, err := NewRunner(testConfig(), failing, testLogger()).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Selected)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "BAD")
}

type failingStore struct {
	storage.DatasetStore
	failName string
}

func (s *failingStore) Read(ctx context.Context, dir storage.Dir, name string) (*dataset.Frame, error) {
	if name == s.failName {
		return nil, storage.ErrInvalidInput
	}
	return s.DatasetStore.Read(ctx, dir, name)
}
