// Package main runs the full batch pipeline:
// cleaning (optional) → features → normalization → model selection.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"market-model-lab/internal/cleaning"
	"market-model-lab/internal/config"
	"market-model-lab/internal/logging"
	"market-model-lab/internal/pipeline"
	"market-model-lab/internal/reporting"
	"market-model-lab/internal/storage/fs"
)

func main() {
	clean := flag.Bool("clean", false, "Run the cleaning stage before feature engineering")
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

	// Cancel the run on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received signal %v, cancelling pipeline", sig)
		cancel()
	}()

	result, err := pipeline.New(pipeline.Options{
		Config:       cfg,
		Store:        fs.FromConfig(cfg),
		Logger:       log,
		Clean:        *clean,
		FillStrategy: strategy,
	}).Run(ctx)
	if err != nil {
		log.WithError(err).Error("pipeline failed")
		os.Exit(1)
	}

	fmt.Println("Pipeline completed:")
	if result.Cleaning != nil {
		fmt.Printf("  Cleaned:    %d\n", result.Cleaning.Cleaned)
	}
	fmt.Printf("  Processed:  %d\n", result.Features.Processed)
	fmt.Printf("  Normalized: %d\n", result.Normalize.Normalized)
	fmt.Printf("  Selected:   %d\n", result.Selection.Selected)

	if len(result.Selection.Entries) == 0 {
		fmt.Println("\nNo models evaluated or predictions made.")
		return
	}
	fmt.Println("\nFINAL SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Print(reporting.RenderSummaryTable(result.Selection.Entries))
}
