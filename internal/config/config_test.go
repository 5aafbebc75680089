package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "data", cfg.BaseDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "Train.csv", cfg.Files.TrainSuffix)
	assert.Equal(t, "Test.csv", cfg.Files.TestSuffix)
	assert.Equal(t, "Current.csv", cfg.Files.CurrentSuffix)
	assert.Equal(t, "CurrentProcessed.csv", cfg.Files.CurrentProcessedSuffix)
	assert.Equal(t, "CurrentNorm.csv", cfg.Files.CurrentNormSuffix)
	assert.Equal(t, "Date", cfg.Features.DateColumn)
	assert.Equal(t, []string{"Feature", "Signal", "Metric"}, cfg.Features.CandidatePrefixes)
	assert.Equal(t, "Lag1", cfg.Features.LagSuffix)
	assert.Contains(t, cfg.Features.ExcludeColumns, "Target")
	assert.Len(t, cfg.Features.NormalizeColumns, 8)
	assert.Equal(t, "Target", cfg.Model.TargetColumn)
	assert.Equal(t, 2, cfg.Model.MinSubsetSize)
	assert.Equal(t, 5, cfg.Model.MaxSubsetSize)
	assert.Equal(t, 5000, cfg.Model.MaxIterations)
	assert.Equal(t, filepath.Join("data", "splits"), cfg.SplitsDir())
	assert.Equal(t, filepath.Join("data", "reports"), cfg.ReportsDir())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MARKETLAB_BASE_DIR", "/srv/lab")
	t.Setenv("MARKETLAB_LOG_LEVEL", "debug")
	t.Setenv("MARKETLAB_MODEL_MAX_SUBSET_SIZE", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/lab", cfg.BaseDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Model.MaxSubsetSize)
	assert.Equal(t, filepath.Join("/srv/lab", "normalized"), cfg.NormalizedDir())
}

func TestLoadRejectsBadBounds(t *testing.T) {
	t.Setenv("MARKETLAB_MODEL_MIN_SUBSET_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestEnsureDirs(t *testing.T) {
	cfg := &Config{BaseDir: t.TempDir()}
	require.NoError(t, cfg.EnsureDirs())

	for _, dir := range []string{cfg.NormalizedDir(), cfg.PredictionsDir(), cfg.ReportsDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
