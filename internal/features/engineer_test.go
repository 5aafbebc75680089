package features

import (
	"testing"

	"market-model-lab/internal/dataset"
)

func numberCol(vals ...float64) []dataset.Value {
	out := make([]dataset.Value, len(vals))
	for i, v := range vals {
		out[i] = dataset.Number(v)
	}
	return out
}

func TestAddLagFeatures(t *testing.T) {
	f := dataset.New("V")
	if err := f.SetColumn("V", numberCol(10, 20, 30)); err != nil {
		t.Fatal(err)
	}

	if err := AddLagFeatures(f, []string{"V", "Absent"}, 1); err != nil {
		t.Fatalf("AddLagFeatures: %v", err)
	}

	if !f.HasColumn("VLag1") {
		t.Fatal("VLag1 missing")
	}
	if f.HasColumn("AbsentLag1") {
		t.Error("absent source should not produce a lag column")
	}
	if !f.At("VLag1", 0).IsMissing() {
		t.Error("first lag cell should be missing")
	}
	if v, _ := f.At("VLag1", 1).Float(); v != 10 {
		t.Errorf("VLag1[1] = %v, want 10", v)
	}
	if v, _ := f.At("VLag1", 2).Float(); v != 20 {
		t.Errorf("VLag1[2] = %v, want 20", v)
	}
}

func TestApplySortsAndDerives(t *testing.T) {
	f := dataset.New("Date", "Open", "Close")
	if err := f.SetColumn("Date", []dataset.Value{
		dataset.String("2024-01-03"), dataset.String("2024-01-01"), dataset.String("2024-01-02"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn("Open", numberCol(31, 11, 21)); err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn("Close", numberCol(30, 10, 20)); err != nil {
		t.Fatal(err)
	}

	out, err := NewEngineer("Date").Apply(f)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Rows sorted ascending by date.
	if v, _ := out.At("Close", 0).Float(); v != 10 {
		t.Errorf("Close[0] = %v, want 10 after sort", v)
	}

	// Placeholder indicators exist and stay missing.
	for _, name := range []string{"DailyPct", "OpenToHighPct", "VWAPWeekly", "OPG", "CustomIndicator", "CustomIndicatorDiff"} {
		col, ok := out.Column(name)
		if !ok {
			t.Errorf("column %s missing", name)
			continue
		}
		for i, v := range col {
			if !v.IsMissing() {
				t.Errorf("%s[%d] = %v, want missing", name, i, v)
			}
		}
	}

	// Missing DailyPct compares false, so DayPositive is all zero and
	// the run length counts up.
	wantRun := []float64{1, 2, 3}
	for i := range wantRun {
		if v, _ := out.At("DayPositive", i).Float(); v != 0 {
			t.Errorf("DayPositive[%d] = %v, want 0", i, v)
		}
		if v, _ := out.At("ConsecutivePosNegDays", i).Float(); v != wantRun[i] {
			t.Errorf("ConsecutivePosNegDays[%d] = %v, want %v", i, v, wantRun[i])
		}
	}

	// PreviousClose is the close shifted by one sorted row.
	if !out.At("PreviousClose", 0).IsMissing() {
		t.Error("PreviousClose[0] should be missing")
	}
	if v, _ := out.At("PreviousClose", 1).Float(); v != 10 {
		t.Errorf("PreviousClose[1] = %v, want 10", v)
	}

	// 2024-01-01 is a Monday; Year and Week are dropped after use.
	if s, _ := out.At("DayOfWeek", 0).Str(); s != "Monday" {
		t.Errorf("DayOfWeek[0] = %q, want Monday", s)
	}
	if out.HasColumn("Year") || out.HasColumn("Week") {
		t.Error("Year and Week should be dropped")
	}

	// No High/Low columns, so TR and ATR7 are not engineered.
	if out.HasColumn("TR") || out.HasColumn("ATR7") {
		t.Error("TR/ATR7 require High, Low and Open")
	}
}

func TestDayPositiveFromObservedValues(t *testing.T) {
	f := dataset.New("DailyPct")
	if err := f.SetColumn("DailyPct", []dataset.Value{
		dataset.Number(0.5), dataset.Number(-0.2), dataset.Number(0.3), dataset.Number(0.4), dataset.Missing,
	}); err != nil {
		t.Fatal(err)
	}

	out, err := NewEngineer("Date").Apply(f)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	wantPositive := []float64{1, 0, 1, 1, 0}
	wantRun := []float64{1, 1, 1, 2, 1}
	for i := range wantPositive {
		if v, _ := out.At("DayPositive", i).Float(); v != wantPositive[i] {
			t.Errorf("DayPositive[%d] = %v, want %v", i, v, wantPositive[i])
		}
		if v, _ := out.At("ConsecutivePosNegDays", i).Float(); v != wantRun[i] {
			t.Errorf("ConsecutivePosNegDays[%d] = %v, want %v", i, v, wantRun[i])
		}
	}
}

func TestApplyColumnOrder(t *testing.T) {
	f := dataset.New("Date", "Open", "Close")
	if err := f.SetColumn("Date", []dataset.Value{dataset.String("2024-01-01")}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn("Open", numberCol(1)); err != nil {
		t.Fatal(err)
	}
	if err := f.SetColumn("Close", numberCol(2)); err != nil {
		t.Fatal(err)
	}

	out, err := NewEngineer("Date").Apply(f)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{
		"Date", "Open", "Close",
		"DailyPct", "DayPositive", "ConsecutivePosNegDays",
		"OpenToHighPct", "OpenToLowPct",
		"DailyPctLag1", "DayPositiveLag1", "ConsecutivePosNegDaysLag1",
		"OpenToHighPctLag1", "OpenToLowPctLag1",
		"DayOfWeek", "VWAPWeekly", "DistOpenVWAPPct",
		"PreviousClose", "OPG", "CustomIndicator", "CustomIndicatorDiff",
	}
	got := out.Columns()
	if len(got) != len(want) {
		t.Fatalf("columns = %v\nwant %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("columns[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
