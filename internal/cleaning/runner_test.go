package cleaning

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"market-model-lab/internal/config"
	"market-model-lab/internal/dataset"
	"market-model-lab/internal/storage"
	"market-model-lab/internal/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseDir: "data",
		Files: config.FilesConfig{
			TrainSuffix:        "Train.csv",
			TestSuffix:         "Test.csv",
			TrainCleanedSuffix: "TrainCleaned.csv",
			TestCleanedSuffix:  "TestCleaned.csv",
		},
		Features: config.FeaturesConfig{DateColumn: "Date"},
		Model:    config.ModelConfig{TargetColumn: "Target"},
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func splitFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	f := dataset.New("Date", "FeatureA", "Target")
	if err := f.SetColumn("Date", []dataset.Value{
		dataset.String("2024-01-02"), dataset.String("2024-01-02"), dataset.String("2024-01-03"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn("FeatureA", []dataset.Value{
		dataset.Number(1), dataset.Number(1), dataset.Missing,
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn("Target", []dataset.Value{
		dataset.Number(1), dataset.Number(1), dataset.Number(0),
	}); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestRunnerWritesCleanedSplits(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()
	if err := store.Write(ctx, storage.DirSplits, "ABCTrain.csv", splitFrame(t)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(ctx, storage.DirSplits, "ABCTest.csv", splitFrame(t)); err != nil {
		t.Fatal(err)
	}

	result, err := NewRunner(testConfig(), store, testLogger()).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Cleaned != 2 {
		t.Errorf("Cleaned = %d, want 2", result.Cleaned)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}

	cleaned, err := store.Read(ctx, storage.DirSplits, "ABCTrainCleaned.csv")
	if err != nil {
		t.Fatalf("Read cleaned: %v", err)
	}
	// Duplicate row dropped, missing FeatureA median-filled.
	if cleaned.NumRows() != 2 {
		t.Errorf("cleaned rows = %d, want 2", cleaned.NumRows())
	}
	if v, ok := cleaned.At("FeatureA", 1).Float(); !ok || v != 1 {
		t.Errorf("FeatureA[1] = %v, want median 1", cleaned.At("FeatureA", 1))
	}
}

func TestRunnerCollectsPerFileFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()

	bad := dataset.New("Date")
	if err := store.Write(ctx, storage.DirSplits, "BADTrain.csv", bad); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(ctx, storage.DirSplits, "OKTrain.csv", splitFrame(t)); err != nil {
		t.Fatal(err)
	}

	failing := &failingStore{DatasetStore: store, failName: "BADTrain.csv"}

	result, err := NewRunner(testConfig(), failing, testLogger()).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Cleaned != 1 {
		t.Errorf("Cleaned = %d, want 1", result.Cleaned)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "BADTrain.csv") {
		t.Errorf("Errors = %v, want one entry naming BADTrain.csv", result.Errors)
	}
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
