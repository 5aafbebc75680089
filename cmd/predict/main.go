// Package main runs model selection over the normalized datasets and
// prints the summary.
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

	"market-model-lab/internal/config"
	"market-model-lab/internal/logging"
	"market-model-lab/internal/reporting"
	"market-model-lab/internal/selection"
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

	// The subset search can run for a while; allow interrupting it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received signal %v, cancelling selection", sig)
		cancel()
	}()

	result, err := selection.NewRunner(cfg, fs.FromConfig(cfg), log).Run(ctx)
	if err != nil {
		log.WithError(err).Error("model selection failed")
		os.Exit(1)
	}

	if len(result.Entries) == 0 {
		fmt.Println("No models evaluated or predictions made.")
		return
	}
	fmt.Println("\nFINAL SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Print(reporting.RenderSummaryTable(result.Entries))
}
