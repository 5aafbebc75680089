// Package main normalizes every dataset against its training split.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"market-model-lab/internal/config"
	"market-model-lab/internal/logging"
	"market-model-lab/internal/normalize"
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

	result, err := normalize.NewRunner(cfg, fs.FromConfig(cfg), log).Run(context.Background())
	if err != nil {
		log.WithError(err).Error("normalization failed")
		os.Exit(1)
	}

	fmt.Printf("Normalization completed: %d normalized, %d skipped\n", result.Normalized, result.Skipped)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}
}
