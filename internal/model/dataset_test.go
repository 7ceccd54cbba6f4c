package model

import (
	"math"
	"testing"
	"time"
)

// newTestDataset builds a small dataset used by several tests.
func newTestDataset() *Dataset {
	ds := NewDataset("test.csv", []string{"patient_id", "temperature"})
	ds.Append(Row{"patient_id": StringValue("P001"), "temperature": StringValue("36.5")})
	ds.Append(Row{"patient_id": StringValue("P002")})
	ds.Append(Row{"patient_id": StringValue("P003"), "temperature": StringValue("42.5"), "extra": StringValue("x")})
	return ds
}

// TestDatasetSchema tests column presence lookups.
func TestDatasetSchema(t *testing.T) {
	t.Parallel()

	ds := newTestDataset()

	t.Run("reports present columns", func(t *testing.T) {
		t.Parallel()
		if !ds.HasColumn("patient_id") {
			t.Error("expected patient_id to be present")
		}
	})

	t.Run("reports absent columns", func(t *testing.T) {
		t.Parallel()
		if ds.HasColumn("facility_code") {
			t.Error("expected facility_code to be absent")
		}
	})

	t.Run("keeps header order", func(t *testing.T) {
		t.Parallel()
		cols := ds.Columns()
		if len(cols) != 2 || cols[0] != "patient_id" || cols[1] != "temperature" {
			t.Errorf("unexpected columns: %v", cols)
		}
	})

	t.Run("columns returns a copy", func(t *testing.T) {
		t.Parallel()
		cols := ds.Columns()
		cols[0] = "changed"
		if ds.Columns()[0] != "patient_id" {
			t.Error("expected header to be unaffected by caller writes")
		}
	})
}

// TestDatasetAppend tests that rows are normalized to the header.
func TestDatasetAppend(t *testing.T) {
	t.Parallel()

	ds := newTestDataset()

	if ds.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", ds.Len())
	}
	if !ds.Row(1).Get("temperature").IsNull() {
		t.Error("expected missing header column to be stored as null")
	}
	if _, ok := ds.Row(2)["extra"]; ok {
		t.Error("expected columns outside the header to be dropped")
	}
}

// TestDatasetTransform tests in-place column transforms.
func TestDatasetTransform(t *testing.T) {
	t.Parallel()

	t.Run("rewrites every value of the column", func(t *testing.T) {
		t.Parallel()
		ds := newTestDataset()
		ds.Transform("patient_id", func(v Value) Value {
			return StringValue(v.Text() + "-x")
		})
		if got := ds.Row(0).Get("patient_id").Text(); got != "P001-x" {
			t.Errorf("expected P001-x, got %q", got)
		}
	})

	t.Run("absent column is a no-op", func(t *testing.T) {
		t.Parallel()
		ds := newTestDataset()
		called := false
		ds.Transform("weight", func(v Value) Value {
			called = true
			return v
		})
		if called {
			t.Error("expected transform not to run for an absent column")
		}
	})
}

// TestDatasetCount tests predicate counting.
func TestDatasetCount(t *testing.T) {
	t.Parallel()

	ds := newTestDataset()
	if got := ds.Count("temperature", Value.IsNull); got != 1 {
		t.Errorf("expected 1 null temperature, got %d", got)
	}
	if got := ds.Count("weight", Value.IsNull); got != 0 {
		t.Errorf("expected absent column to count zero, got %d", got)
	}
}

// TestDatasetRetain tests order-preserving row removal.
func TestDatasetRetain(t *testing.T) {
	t.Parallel()

	ds := newTestDataset()
	removed := ds.Retain(func(i int, _ Row) bool {
		return i != 1
	})

	if removed != 1 {
		t.Errorf("expected 1 removed row, got %d", removed)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", ds.Len())
	}
	if ds.Row(0).Get("patient_id").Text() != "P001" || ds.Row(1).Get("patient_id").Text() != "P003" {
		t.Error("expected original order to be preserved")
	}
}

// TestValue tests the tagged value helpers.
func TestValue(t *testing.T) {
	t.Parallel()

	t.Run("zero value is null", func(t *testing.T) {
		t.Parallel()
		var v Value
		if !v.IsNull() || v.Kind() != KindNull {
			t.Error("expected zero Value to be null")
		}
	})

	t.Run("NaN becomes null", func(t *testing.T) {
		t.Parallel()
		if !NumberValue(math.NaN()).IsNull() {
			t.Error("expected NaN to be stored as null")
		}
	})

	t.Run("blank detection", func(t *testing.T) {
		t.Parallel()
		if !StringValue("   ").IsBlank() {
			t.Error("expected whitespace string to be blank")
		}
		if StringValue("x").IsBlank() {
			t.Error("expected non-empty string not to be blank")
		}
		if NumberValue(0).IsBlank() {
			t.Error("expected number not to be blank")
		}
	})

	t.Run("equality", func(t *testing.T) {
		t.Parallel()
		if !NullValue().Equal(NullValue()) {
			t.Error("expected null to equal null")
		}
		if StringValue("1").Equal(NumberValue(1)) {
			t.Error("expected different kinds not to be equal")
		}
		d := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		if !DateValue(d).Equal(DateValue(d)) {
			t.Error("expected equal dates to be equal")
		}
	})

	t.Run("renders output form", func(t *testing.T) {
		t.Parallel()
		testCases := []struct {
			value    Value
			expected string
		}{
			{NullValue(), ""},
			{StringValue("abc"), "abc"},
			{NumberValue(36.5), "36.5"},
			{NumberValue(80), "80"},
			{DateValue(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), "2024-01-15"},
			{DateValue(time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)), "2024-01-15 08:30:00"},
		}
		for _, tc := range testCases {
			if got := tc.value.String(); got != tc.expected {
				t.Errorf("String() = %q, expected %q", got, tc.expected)
			}
		}
	})

	t.Run("kind names", func(t *testing.T) {
		t.Parallel()
		if KindDate.String() != "date" || Kind(42).String() != "unknown" {
			t.Error("unexpected kind names")
		}
	})
}
