package dataset

import (
	"strconv"
	"time"
)

// ValueKind discriminates the scalar types a cell can hold.
type ValueKind uint8

const (
	KindMissing ValueKind = iota // absent or unparsable cell
	KindNumber
	KindString
	KindTime
)

// DateLayout is the canonical rendering for date cells.
const DateLayout = "2006-01-02"

// Value is a single cell of a Frame. The zero value is the missing
// marker: parsing failures coerce to it instead of raising errors, and
// it propagates through transformations untouched.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	ts   time.Time
}

// Missing is the canonical missing cell.
var Missing = Value{}

// Number wraps a float64 cell.
func Number(v float64) Value { return Value{kind: KindNumber, num: v} }

// String wraps a string cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Time wraps a timestamp cell.
func Time(t time.Time) Value { return Value{kind: KindTime, ts: t} }

// Kind returns the cell's discriminator.
func (v Value) Kind() ValueKind { return v.kind }

// IsMissing reports whether the cell is the missing marker.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric payload; ok is false for non-number cells.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Str returns the string payload; ok is false for non-string cells.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Time returns the timestamp payload; ok is false for non-time cells.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.ts, true
}

// Equal reports whether two cells hold the same kind and payload.
// Missing cells compare equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindTime:
		return v.ts.Equal(o.ts)
	default:
		return true
	}
}

// String renders the cell the way the CSV codec writes it. Missing
// cells render as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	case KindTime:
		if v.ts.Hour() == 0 && v.ts.Minute() == 0 && v.ts.Second() == 0 {
			return v.ts.Format(DateLayout)
		}
		return v.ts.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}
