package cleaning

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"market-model-lab/internal/dataset"
)

// Strategy selects how Fill replaces missing cells.
type Strategy string

const (
	StrategyMedian Strategy = "median"
	StrategyMean   Strategy = "mean"
	StrategyZero   Strategy = "zero"
	StrategyFFill  Strategy = "ffill"
)

// ParseStrategy maps a strategy name to its Strategy value.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case StrategyMedian, StrategyMean, StrategyZero, StrategyFFill:
		return Strategy(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("unknown fill strategy %q", s)
	}
}

// dateLayouts are tried in order when coercing date cells.
var dateLayouts = []string{
	dataset.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// CoerceDates rewrites the named columns so every cell is either a time
// or the missing marker. Unparsable cells become missing; absent
// columns are ignored.
func CoerceDates(f *dataset.Frame, cols []string) {
	for _, name := range cols {
		col, ok := f.Column(name)
		if !ok {
			continue
		}
		for i, v := range col {
			col[i] = coerceDate(v)
		}
	}
}

func coerceDate(v dataset.Value) dataset.Value {
	switch v.Kind() {
	case dataset.KindTime, dataset.KindMissing:
		return v
	case dataset.KindString:
		s, _ := v.Str()
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				return dataset.Time(t)
			}
		}
		return dataset.Missing
	default:
		return dataset.Missing
	}
}

// CoerceNumerics rewrites the named columns so every cell is either a
// number or the missing marker. Unparsable cells become missing; absent
// columns are ignored.
func CoerceNumerics(f *dataset.Frame, cols []string) {
	for _, name := range cols {
		col, ok := f.Column(name)
		if !ok {
			continue
		}
		for i, v := range col {
			col[i] = coerceNumber(v)
		}
	}
}

func coerceNumber(v dataset.Value) dataset.Value {
	switch v.Kind() {
	case dataset.KindNumber, dataset.KindMissing:
		return v
	case dataset.KindString:
		s, _ := v.Str()
		if num, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return dataset.Number(num)
		}
		return dataset.Missing
	default:
		return dataset.Missing
	}
}

// DropDuplicates removes rows equal to an earlier row in every cell,
// keeping the first occurrence. The result is densely reindexed.
func DropDuplicates(f *dataset.Frame) *dataset.Frame {
	cols := make([][]dataset.Value, 0, f.NumCols())
	for _, name := range f.Columns() {
		col, _ := f.Column(name)
		cols = append(cols, col)
	}
	seen := make(map[string]bool, f.NumRows())
	return f.Filter(func(row int) bool {
		var b strings.Builder
		for _, col := range cols {
			v := col[row]
			fmt.Fprintf(&b, "%d\x1f%s\x1e", v.Kind(), v.String())
		}
		key := b.String()
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}

// DropEmptyRows removes rows whose every cell is missing. The result is
// densely reindexed.
func DropEmptyRows(f *dataset.Frame) *dataset.Frame {
	cols := make([][]dataset.Value, 0, f.NumCols())
	for _, name := range f.Columns() {
		col, _ := f.Column(name)
		cols = append(cols, col)
	}
	return f.Filter(func(row int) bool {
		for _, col := range cols {
			if !col[row].IsMissing() {
				return true
			}
		}
		return false
	})
}

// Fill replaces missing cells in the targeted columns. Nil or empty
// cols targets every numeric column. Median and mean are computed over
// the column's observed values; columns with none are left unchanged.
// Forward fill carries the last observed value and leaves leading
// missing cells in place. Absent columns are ignored.
func Fill(f *dataset.Frame, strategy Strategy, cols []string) error {
	switch strategy {
	case StrategyMedian, StrategyMean, StrategyZero, StrategyFFill:
	default:
		return fmt.Errorf("unknown fill strategy %q", strategy)
	}
	if len(cols) == 0 {
		for _, name := range f.Columns() {
			if f.IsNumeric(name) {
				cols = append(cols, name)
			}
		}
	}
	for _, name := range cols {
		col, ok := f.Column(name)
		if !ok {
			continue
		}
		fillColumn(col, strategy)
	}
	return nil
}

func fillColumn(col []dataset.Value, strategy Strategy) {
	if strategy == StrategyFFill {
		last := dataset.Missing
		for i, v := range col {
			if v.IsMissing() {
				col[i] = last
			} else {
				last = v
			}
		}
		return
	}

	var replacement dataset.Value
	switch strategy {
	case StrategyZero:
		replacement = dataset.Number(0)
	case StrategyMedian, StrategyMean:
		observed := observedNumbers(col)
		if len(observed) == 0 {
			return
		}
		if strategy == StrategyMean {
			replacement = dataset.Number(stat.Mean(observed, nil))
		} else {
			sort.Float64s(observed)
			replacement = dataset.Number(percentile(observed, 0.50))
		}
	}
	for i, v := range col {
		if v.IsMissing() {
			col[i] = replacement
		}
	}
}

func observedNumbers(col []dataset.Value) []float64 {
	var out []float64
	for _, v := range col {
		if num, ok := v.Float(); ok {
			out = append(out, num)
		}
	}
	return out
}

// percentile computes the p-th percentile of sorted values with linear
// interpolation between the two nearest ranks.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// ValidateColumns returns the required column names absent from the
// frame, in the order given. An empty result means all are present.
func ValidateColumns(f *dataset.Frame, required []string) []string {
	var missing []string
	for _, name := range required {
		if !f.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
