// Package reporting renders the end-of-run model selection summary.
package reporting

import (
	"fmt"
	"strings"

	"market-model-lab/internal/dataset"
	"market-model-lab/internal/selection"
)

var summaryHeaders = [4]string{"Dataset", "Accuracy (Test)", "Accuracy (Current)", "Best Features"}

// RenderSummaryTable lays the summary entries out as a fixed-width
// text table, one row per dataset. A missing current accuracy renders
// as "-". The returned string ends with a newline.
func RenderSummaryTable(entries []selection.SummaryEntry) string {
	rows := make([][4]string, len(entries))
	for i, e := range entries {
		current := "-"
		if e.CurrentAccuracy != nil {
			current = formatAccuracy(*e.CurrentAccuracy)
		}
		rows[i] = [4]string{
			e.Dataset,
			formatAccuracy(e.TestAccuracy),
			current,
			strings.Join(e.Features, ", "),
		}
	}

	widths := [4]int{}
	for i, h := range summaryHeaders {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(row [4]string) {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			// The last column is ragged.
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(summaryHeaders)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// SummaryFrame lays the summary out as a dataset so a run can persist
// it through the same store as every other artifact. A missing current
// accuracy becomes a missing cell.
func SummaryFrame(entries []selection.SummaryEntry) *dataset.Frame {
	f := dataset.New("dataset", "accuracy_test", "accuracy_current", "best_features")
	for _, e := range entries {
		row := map[string]dataset.Value{
			"dataset":       dataset.String(e.Dataset),
			"accuracy_test": dataset.Number(e.TestAccuracy),
			"best_features": dataset.String(strings.Join(e.Features, ";")),
		}
		if e.CurrentAccuracy != nil {
			row["accuracy_current"] = dataset.Number(*e.CurrentAccuracy)
		}
		f.AppendRow(row)
	}
	return f
}

func formatAccuracy(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
