package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the immutable run configuration. One instance is built at
// startup and passed into every stage; nothing mutates it afterwards.
type Config struct {
	BaseDir  string         `mapstructure:"base_dir"`
	LogLevel string         `mapstructure:"log_level"`
	Files    FilesConfig    `mapstructure:"files"`
	Features FeaturesConfig `mapstructure:"features"`
	Model    ModelConfig    `mapstructure:"model"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

// FilesConfig holds the file-suffix conventions used to pair datasets
// across directories. A dataset's basename is its file name with the
// role suffix stripped.
type FilesConfig struct {
	TrainSuffix            string `mapstructure:"train_suffix"`
	TestSuffix             string `mapstructure:"test_suffix"`
	CurrentSuffix          string `mapstructure:"current_suffix"`
	CurrentProcessedSuffix string `mapstructure:"current_processed_suffix"`
	TrainCleanedSuffix     string `mapstructure:"train_cleaned_suffix"`
	TestCleanedSuffix      string `mapstructure:"test_cleaned_suffix"`
	CurrentNormSuffix      string `mapstructure:"current_norm_suffix"`
}

// FeaturesConfig drives feature engineering, discovery and
// normalization column selection.
type FeaturesConfig struct {
	DateColumn        string   `mapstructure:"date_column"`
	CandidatePrefixes []string `mapstructure:"candidate_prefixes"`
	LagSuffix         string   `mapstructure:"lag_suffix"`
	ExcludeColumns    []string `mapstructure:"exclude_columns"`
	NormalizeColumns  []string `mapstructure:"normalize_columns"`
}

// ModelConfig bounds the feature-subset search and the trainer.
type ModelConfig struct {
	TargetColumn  string `mapstructure:"target_column"`
	MinSubsetSize int    `mapstructure:"min_subset_size"`
	MaxSubsetSize int    `mapstructure:"max_subset_size"`
	MaxIterations int    `mapstructure:"max_iterations"`
}

// IngestConfig holds the schema used when appending rows to a current
// dataset that does not exist yet.
type IngestConfig struct {
	Schema []string `mapstructure:"schema"`
}

// Load builds the configuration from defaults, an optional config.yaml
// (working dir or ./configs) and MARKETLAB_-prefixed environment
// variables, e.g. MARKETLAB_BASE_DIR.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("MARKETLAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("base_dir", "data")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("files.train_suffix", "Train.csv")
	viper.SetDefault("files.test_suffix", "Test.csv")
	viper.SetDefault("files.current_suffix", "Current.csv")
	viper.SetDefault("files.current_processed_suffix", "CurrentProcessed.csv")
	viper.SetDefault("files.train_cleaned_suffix", "TrainCleaned.csv")
	viper.SetDefault("files.test_cleaned_suffix", "TestCleaned.csv")
	viper.SetDefault("files.current_norm_suffix", "CurrentNorm.csv")

	viper.SetDefault("features.date_column", "Date")
	viper.SetDefault("features.candidate_prefixes", []string{"Feature", "Signal", "Metric"})
	viper.SetDefault("features.lag_suffix", "Lag1")
	viper.SetDefault("features.exclude_columns", []string{
		"Date", "Open", "High", "Low", "Close", "Volume", "Target",
	})
	viper.SetDefault("features.normalize_columns", []string{
		"FeatureA", "FeatureALag1",
		"FeatureB", "FeatureBLag1",
		"FeatureC", "FeatureCLag1",
		"SignalX", "SignalXLag1",
	})

	viper.SetDefault("model.target_column", "Target")
	viper.SetDefault("model.min_subset_size", 2)
	viper.SetDefault("model.max_subset_size", 5)
	viper.SetDefault("model.max_iterations", 5000)

	viper.SetDefault("ingest.schema", []string{
		"Date", "Open", "High", "Low", "Close", "Volume",
		"FeatureA", "FeatureB", "FeatureC", "SignalX",
	})
}

func (c *Config) validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base_dir must not be empty")
	}
	if c.Model.TargetColumn == "" {
		return fmt.Errorf("model.target_column must not be empty")
	}
	if c.Model.MinSubsetSize < 1 {
		return fmt.Errorf("model.min_subset_size must be at least 1, got %d", c.Model.MinSubsetSize)
	}
	if c.Model.MaxSubsetSize < c.Model.MinSubsetSize {
		return fmt.Errorf("model.max_subset_size %d below min_subset_size %d",
			c.Model.MaxSubsetSize, c.Model.MinSubsetSize)
	}
	if c.Model.MaxIterations <= 0 {
		return fmt.Errorf("model.max_iterations must be positive, got %d", c.Model.MaxIterations)
	}
	return nil
}

// SplitsDir holds raw and cleaned train/test splits.
func (c *Config) SplitsDir() string { return filepath.Join(c.BaseDir, "splits") }

// CurrentDir holds raw and processed current (production) datasets.
func (c *Config) CurrentDir() string { return filepath.Join(c.BaseDir, "current") }

// NormalizedDir holds normalized splits ready for model selection.
func (c *Config) NormalizedDir() string { return filepath.Join(c.BaseDir, "normalized") }

// PredictionsDir holds prediction outputs.
func (c *Config) PredictionsDir() string { return filepath.Join(c.BaseDir, "predictions") }

// ReportsDir holds run summary artifacts.
func (c *Config) ReportsDir() string { return filepath.Join(c.BaseDir, "reports") }

// EnsureDirs creates the output directories. Input directories (splits,
// current) are expected to exist already.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.NormalizedDir(), c.PredictionsDir(), c.ReportsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
