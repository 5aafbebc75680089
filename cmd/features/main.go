// Package main runs feature engineering over every raw current dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"market-model-lab/internal/config"
	"market-model-lab/internal/features"
	"market-model-lab/internal/logging"
	"market-model-lab/internal/storage/fs"
)

func main() {
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Prepare data directories: %v\n", err)
		os.Exit(1)
	}

	result, err := features.NewRunner(cfg, fs.FromConfig(cfg), log).Run(context.Background())
	if err != nil {
		log.WithError(err).Error("feature engineering failed")
		os.Exit(1)
	}

	fmt.Printf("Feature engineering completed: %d files processed\n", result.Processed)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}
}
