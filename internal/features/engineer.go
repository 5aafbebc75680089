package features

import (
	"fmt"

	"market-model-lab/internal/cleaning"
	"market-model-lab/internal/dataset"
)

// lagSources are the engineered columns that also get lagged variants.
var lagSources = []string{
	"DailyPct", "TR", "ATR7", "DayPositive",
	"ConsecutivePosNegDays", "OpenToHighPct", "OpenToLowPct",
}

// Engineer derives the engineered column set over one dataset: sorted
// dates, indicator placeholders, run lengths, lag features and time
// features. Indicator placeholder columns are emitted present,
// row-aligned and lag-able with every cell missing; their formulas are
// not computed here.
type Engineer struct {
	dateColumn string
	lag        int
}

// NewEngineer creates an engineer keyed to the given date column, with
// lag distance 1.
func NewEngineer(dateColumn string) *Engineer {
	return &Engineer{dateColumn: dateColumn, lag: 1}
}

// WithLag overrides the lag distance and returns the engineer.
func (e *Engineer) WithLag(lag int) *Engineer {
	e.lag = lag
	return e
}

// Apply engineers the frame in place, then drops fully-empty rows and
// returns the densely reindexed result.
func (e *Engineer) Apply(f *dataset.Frame) (*dataset.Frame, error) {
	if f.HasColumn(e.dateColumn) {
		cleaning.CoerceDates(f, []string{e.dateColumn})
		f.SortByTime(e.dateColumn)
	}

	n := f.NumRows()

	if f.HasColumn("Open") && f.HasColumn("Close") {
		if err := f.SetColumn("DailyPct", missingColumn(n)); err != nil {
			return nil, err
		}
	}
	if f.HasColumn("High") && f.HasColumn("Low") && f.HasColumn("Open") {
		if err := f.SetColumn("TR", missingColumn(n)); err != nil {
			return nil, err
		}
		if err := f.SetColumn("ATR7", missingColumn(n)); err != nil {
			return nil, err
		}
	}

	if daily, ok := f.Column("DailyPct"); ok {
		positive := dayPositive(daily)
		if err := f.SetColumn("DayPositive", positive); err != nil {
			return nil, err
		}
		if err := f.SetColumn("ConsecutivePosNegDays", runLengths(positive)); err != nil {
			return nil, err
		}
	}

	if err := f.SetColumn("OpenToHighPct", missingColumn(n)); err != nil {
		return nil, err
	}
	if err := f.SetColumn("OpenToLowPct", missingColumn(n)); err != nil {
		return nil, err
	}

	if err := AddLagFeatures(f, lagSources, e.lag); err != nil {
		return nil, err
	}

	if dates, ok := f.Column(e.dateColumn); ok {
		years, weeks, dayNames := timeFeatures(dates)
		if err := f.SetColumn("Year", years); err != nil {
			return nil, err
		}
		if err := f.SetColumn("Week", weeks); err != nil {
			return nil, err
		}
		if err := f.SetColumn("DayOfWeek", dayNames); err != nil {
			return nil, err
		}
	}

	if err := f.SetColumn("VWAPWeekly", missingColumn(n)); err != nil {
		return nil, err
	}
	if err := f.SetColumn("DistOpenVWAPPct", missingColumn(n)); err != nil {
		return nil, err
	}

	previousClose := missingColumn(n)
	if closeCol, ok := f.Column("Close"); ok {
		previousClose = shifted(closeCol, 1)
	}
	if err := f.SetColumn("PreviousClose", previousClose); err != nil {
		return nil, err
	}
	if err := f.SetColumn("OPG", missingColumn(n)); err != nil {
		return nil, err
	}

	if err := f.SetColumn("CustomIndicator", missingColumn(n)); err != nil {
		return nil, err
	}
	indicator, _ := f.Column("CustomIndicator")
	if err := f.SetColumn("CustomIndicatorDiff", difference(indicator, shifted(indicator, 1))); err != nil {
		return nil, err
	}

	// Year and Week feed weekly aggregation upstream and are not kept.
	f.DropColumn("Year")
	f.DropColumn("Week")

	return cleaning.DropEmptyRows(f), nil
}

// AddLagFeatures appends, for each present source column, a column
// named {col}Lag{lag} holding the value from lag rows earlier. The
// first lag rows receive the missing marker. Absent sources are skipped.
func AddLagFeatures(f *dataset.Frame, cols []string, lag int) error {
	for _, name := range cols {
		col, ok := f.Column(name)
		if !ok {
			continue
		}
		lagged := fmt.Sprintf("%sLag%d", name, lag)
		if err := f.SetColumn(lagged, shifted(col, lag)); err != nil {
			return err
		}
	}
	return nil
}

func missingColumn(n int) []dataset.Value {
	return make([]dataset.Value, n)
}

// shifted returns the column displaced lag rows down, front-filled with
// the missing marker.
func shifted(col []dataset.Value, lag int) []dataset.Value {
	out := make([]dataset.Value, len(col))
	for i := lag; i < len(col); i++ {
		out[i] = col[i-lag]
	}
	return out
}

// dayPositive maps each cell to 1 when it is a number greater than
// zero, else 0. Missing cells compare false and map to 0.
func dayPositive(col []dataset.Value) []dataset.Value {
	out := make([]dataset.Value, len(col))
	for i, v := range col {
		if num, ok := v.Float(); ok && num > 0 {
			out[i] = dataset.Number(1)
		} else {
			out[i] = dataset.Number(0)
		}
	}
	return out
}

// runLengths returns the 1-based position of each row within its run
// of consecutive equal cells.
func runLengths(col []dataset.Value) []dataset.Value {
	out := make([]dataset.Value, len(col))
	run := 0
	for i, v := range col {
		if i == 0 || !v.Equal(col[i-1]) {
			run = 1
		} else {
			run++
		}
		out[i] = dataset.Number(float64(run))
	}
	return out
}

// timeFeatures derives ISO year and week numbers plus weekday names
// from a time column. Non-time cells yield missing markers.
func timeFeatures(dates []dataset.Value) (years, weeks, dayNames []dataset.Value) {
	years = make([]dataset.Value, len(dates))
	weeks = make([]dataset.Value, len(dates))
	dayNames = make([]dataset.Value, len(dates))
	for i, v := range dates {
		ts, ok := v.Time()
		if !ok {
			continue
		}
		isoYear, isoWeek := ts.ISOWeek()
		years[i] = dataset.Number(float64(isoYear))
		weeks[i] = dataset.Number(float64(isoWeek))
		dayNames[i] = dataset.String(ts.Weekday().String())
	}
	return years, weeks, dayNames
}

// difference subtracts b from a cell-wise; any missing operand yields a
// missing cell.
func difference(a, b []dataset.Value) []dataset.Value {
	out := make([]dataset.Value, len(a))
	for i := range a {
		av, aok := a[i].Float()
		bv, bok := b[i].Float()
		if aok && bok {
			out[i] = dataset.Number(av - bv)
		}
	}
	return out
}
