package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// missingTokens are the cell spellings read back as the missing marker.
var missingTokens = map[string]bool{
	"":     true,
	"NaN":  true,
	"nan":  true,
	"NA":   true,
	"null": true,
}

// ReadCSV parses a header row plus data rows into a Frame. Cells that
// parse as float64 become numbers, recognized missing tokens become the
// missing marker, and everything else stays a string. Date columns are
// read as strings until explicitly coerced.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read csv header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	f := New(header...)
	if f.NumCols() != len(header) {
		return nil, fmt.Errorf("read csv header: duplicate column names")
	}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		for i, cell := range record {
			f.data[i] = append(f.data[i], parseCell(cell))
		}
	}
	return f, nil
}

// WriteCSV renders the frame as a header row plus one row per index
// entry. Missing cells render as empty fields.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(f.cols))
	for r := 0; r < f.NumRows(); r++ {
		for i := range f.data {
			record[i] = f.data[i][r].String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseCell(cell string) Value {
	if missingTokens[cell] {
		return Missing
	}
	if num, err := strconv.ParseFloat(cell, 64); err == nil {
		return Number(num)
	}
	return String(cell)
}
