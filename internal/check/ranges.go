package check

import (
	"fmt"
	"math"
	"strconv"

	"github.com/nao1215/recordcheck/internal/model"
)

// Bound is the inclusive plausible range of a numeric field.
type Bound struct {
	Field string
	Min   float64
	Max   float64
}

// Contains reports whether f lies within [Min, Max].
func (b Bound) Contains(f float64) bool {
	return f >= b.Min && f <= b.Max
}

// Validate reports whether the bound is usable. NaN compares false with
// everything, so a NaN limit would flag every value.
func (b Bound) Validate() error {
	for _, f := range []float64{b.Min, b.Max} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %s has non-finite limit %s", ErrInvalidBound, b.Field, b)
		}
	}
	if b.Min > b.Max {
		return fmt.Errorf("%w: %s min %s exceeds max %s", ErrInvalidBound, b.Field, formatFloat(b.Min), formatFloat(b.Max))
	}
	return nil
}

// String renders the bound as "[min, max]".
func (b Bound) String() string {
	return "[" + formatFloat(b.Min) + ", " + formatFloat(b.Max) + "]"
}

// DefaultBounds returns the built-in range catalog in evaluation order.
func DefaultBounds() []Bound {
	return []Bound{
		{Field: "temperature", Min: 35.0, Max: 42.0},
		{Field: "heart_rate", Min: 40, Max: 200},
		{Field: "blood_pressure_systolic", Min: 70, Max: 250},
		{Field: "blood_pressure_diastolic", Min: 40, Max: 150},
		{Field: "weight", Min: 0.5, Max: 300},
	}
}

// ValidateRanges coerces each bounded field to numbers in place and reports
// one issue per field with values strictly outside its bound. Values that
// are not numeric become null and never count as out of range.
func ValidateRanges(ds *model.Dataset, bounds []Bound) []model.Issue {
	var issues []model.Issue

	for _, b := range bounds {
		if !ds.HasColumn(b.Field) {
			continue
		}
		ds.Transform(b.Field, CoerceNumber)

		outside := ds.Count(b.Field, func(v model.Value) bool {
			f, ok := v.Float()
			return ok && !b.Contains(f)
		})
		if outside == 0 {
			continue
		}
		issues = append(issues, model.NewIssue(model.CheckRange, b.Field, outside,
			fmt.Sprintf("Found %d records with %s outside range %s", outside, b.Field, b)))
	}

	return issues
}

// formatFloat renders f in its shortest decimal form.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
