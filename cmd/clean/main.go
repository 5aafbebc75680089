// Package main runs the cleaning stage over every train/test split.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"market-model-lab/internal/cleaning"
	"market-model-lab/internal/config"
	"market-model-lab/internal/logging"
	"market-model-lab/internal/storage/fs"
)

func main() {
	fill := flag.String("fill", "median", "Missing-value fill strategy: median, mean, zero or ffill")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	strategy, err := cleaning.ParseStrategy(*fill)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Prepare data directories: %v\n", err)
		os.Exit(1)
	}

	runner := cleaning.NewRunner(cfg, fs.FromConfig(cfg), log).WithStrategy(strategy)
	result, err := runner.Run(context.Background())
	if err != nil {
		log.WithError(err).Error("cleaning failed")
		os.Exit(1)
	}

	fmt.Printf("Cleaning completed: %d files cleaned\n", result.Cleaned)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}
}
