package dataset

import (
	"fmt"
	"sort"
)

// Frame is an ordered collection of named columns sharing a dense,
// zero-based row index. Storage is column-major. Frames are not safe
// for concurrent mutation.
type Frame struct {
	cols  []string
	index map[string]int
	data  [][]Value
}

// New returns an empty Frame with the given column order and zero rows.
func New(columns ...string) *Frame {
	f := &Frame{
		cols:  make([]string, 0, len(columns)),
		index: make(map[string]int, len(columns)),
		data:  make([][]Value, 0, len(columns)),
	}
	for _, c := range columns {
		if _, dup := f.index[c]; dup {
			continue
		}
		f.index[c] = len(f.cols)
		f.cols = append(f.cols, c)
		f.data = append(f.data, nil)
	}
	return f
}

// Columns returns the column names in order. The slice is a copy.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.cols))
	copy(out, f.cols)
	return out
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.cols) }

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	if len(f.data) == 0 {
		return 0
	}
	return len(f.data[0])
}

// Column returns the cells of the named column. The slice aliases the
// frame's storage; callers that mutate it mutate the frame.
func (f *Frame) Column(name string) ([]Value, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.data[i], true
}

// At returns the cell at (column, row), or the missing marker when the
// column does not exist.
func (f *Frame) At(name string, row int) Value {
	i, ok := f.index[name]
	if !ok {
		return Missing
	}
	return f.data[i][row]
}

// Set overwrites the cell at (column, row). Unknown columns are ignored.
func (f *Frame) Set(name string, row int, v Value) {
	if i, ok := f.index[name]; ok {
		f.data[i][row] = v
	}
}

// SetColumn adds or replaces a column, assignment-style. The cell count
// must match the frame's row count unless the frame has no columns yet,
// in which case it defines the row count.
func (f *Frame) SetColumn(name string, cells []Value) error {
	if len(f.cols) > 0 && len(cells) != f.NumRows() {
		return fmt.Errorf("column %s: %d cells for %d rows", name, len(cells), f.NumRows())
	}
	if i, ok := f.index[name]; ok {
		f.data[i] = cells
		return nil
	}
	f.index[name] = len(f.cols)
	f.cols = append(f.cols, name)
	f.data = append(f.data, cells)
	return nil
}

// DropColumn removes the named column if present.
func (f *Frame) DropColumn(name string) {
	i, ok := f.index[name]
	if !ok {
		return
	}
	f.cols = append(f.cols[:i], f.cols[i+1:]...)
	f.data = append(f.data[:i], f.data[i+1:]...)
	delete(f.index, name)
	for j := i; j < len(f.cols); j++ {
		f.index[f.cols[j]] = j
	}
}

// AppendRow adds one row, taking each column's cell from values and
// defaulting absent entries to the missing marker.
func (f *Frame) AppendRow(values map[string]Value) {
	for i, c := range f.cols {
		f.data[i] = append(f.data[i], values[c])
	}
}

// Filter returns a new Frame keeping only rows where keep returns true,
// reindexed densely from zero.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	out := New(f.cols...)
	n := f.NumRows()
	for i := range out.data {
		out.data[i] = make([]Value, 0, n)
	}
	for r := 0; r < n; r++ {
		if !keep(r) {
			continue
		}
		for i := range f.data {
			out.data[i] = append(out.data[i], f.data[i][r])
		}
	}
	return out
}

// SortByTime stably reorders rows ascending by the named time column.
// Rows whose cell is missing or not a time sort after all dated rows.
// Frames without the column are left untouched.
func (f *Frame) SortByTime(name string) {
	col, ok := f.Column(name)
	if !ok {
		return
	}
	n := f.NumRows()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, aok := col[order[a]].Time()
		tb, bok := col[order[b]].Time()
		if aok && bok {
			return ta.Before(tb)
		}
		return aok && !bok
	})
	for i, cells := range f.data {
		next := make([]Value, n)
		for r, src := range order {
			next[r] = cells[src]
		}
		f.data[i] = next
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := New(f.cols...)
	for i, cells := range f.data {
		dup := make([]Value, len(cells))
		copy(dup, cells)
		out.data[i] = dup
	}
	return out
}

// IsNumeric reports whether every non-missing cell in the column is a
// number. All-missing columns count as numeric. Absent columns do not.
func (f *Frame) IsNumeric(name string) bool {
	col, ok := f.Column(name)
	if !ok {
		return false
	}
	for _, v := range col {
		if !v.IsMissing() {
			if _, isNum := v.Float(); !isNum {
				return false
			}
		}
	}
	return true
}
