// Package main appends one schema-aligned row to a dataset's current
// file, creating the file when needed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"market-model-lab/internal/config"
	"market-model-lab/internal/ingestion"
	"market-model-lab/internal/logging"
	"market-model-lab/internal/storage/fs"
)

func main() {
	base := flag.String("base", "", "Dataset basename to append to (required)")
	columns := flag.String("columns", "", "Comma-separated schema override; defaults to the configured ingest schema")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	if *base == "" {
		fmt.Fprintln(os.Stderr, "Error: --base is required")
		flag.Usage()
		os.Exit(1)
	}

	schema := cfg.Ingest.Schema
	if *columns != "" {
		schema = splitColumns(*columns)
	}

	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Prepare data directories: %v\n", err)
		os.Exit(1)
	}

	appender := ingestion.NewAppender(cfg, fs.FromConfig(cfg), log)
	rows, err := appender.Append(context.Background(), *base, schema)
	if err != nil {
		log.WithError(err).Error("append failed")
		os.Exit(1)
	}

	fmt.Printf("Appended new row to %s%s (rows: %d)\n", *base, cfg.Files.CurrentSuffix, rows)
}

// splitColumns parses a comma-separated column list, dropping empty
// entries.
func splitColumns(s string) []string {
	var out []string
	for _, col := range strings.Split(s, ",") {
		col = strings.TrimSpace(col)
		if col != "" {
			out = append(out, col)
		}
	}
	return out
}
