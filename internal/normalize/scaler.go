package normalize

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"market-model-lab/internal/dataset"
)

type colRange struct {
	min, max float64
	observed bool
}

// MinMaxScaler holds per-column value ranges fitted on a training
// split. Transform maps a fitted column's training range onto [0,1];
// values outside that range map outside [0,1] and are never clamped.
type MinMaxScaler struct {
	cols   []string
	ranges map[string]colRange
}

// FitMinMax fits a scaler over the named columns of the training
// split. Missing cells are ignored; a column with no observed values is
// recorded as unobservable and transforms to all-missing.
func FitMinMax(f *dataset.Frame, cols []string) *MinMaxScaler {
	s := &MinMaxScaler{
		cols:   append([]string(nil), cols...),
		ranges: make(map[string]colRange, len(cols)),
	}
	for _, name := range cols {
		col, ok := f.Column(name)
		if !ok {
			s.ranges[name] = colRange{}
			continue
		}
		var observed []float64
		for _, v := range col {
			if num, isNum := v.Float(); isNum {
				observed = append(observed, num)
			}
		}
		if len(observed) == 0 {
			s.ranges[name] = colRange{}
			continue
		}
		s.ranges[name] = colRange{
			min:      floats.Min(observed),
			max:      floats.Max(observed),
			observed: true,
		}
	}
	return s
}

// Columns returns the fitted column names in fit order.
func (s *MinMaxScaler) Columns() []string {
	return append([]string(nil), s.cols...)
}

// Range returns the fitted (min, max) for a column; ok is false when
// the column was never fitted or had no observed values.
func (s *MinMaxScaler) Range(name string) (min, max float64, ok bool) {
	r, exists := s.ranges[name]
	if !exists || !r.observed {
		return 0, 0, false
	}
	return r.min, r.max, true
}

// Transform rewrites the named columns of f in place using the fitted
// ranges. A constant training column maps to 0. Missing cells stay
// missing. Every named column must have been fitted and be present.
func (s *MinMaxScaler) Transform(f *dataset.Frame, cols []string) error {
	for _, name := range cols {
		r, fitted := s.ranges[name]
		if !fitted {
			return fmt.Errorf("column %s was not fitted", name)
		}
		col, ok := f.Column(name)
		if !ok {
			return fmt.Errorf("column %s not present", name)
		}
		span := r.max - r.min
		for i, v := range col {
			num, isNum := v.Float()
			if !isNum || !r.observed {
				col[i] = dataset.Missing
				continue
			}
			if span == 0 {
				col[i] = dataset.Number(0)
				continue
			}
			col[i] = dataset.Number((num - r.min) / span)
		}
	}
	return nil
}
