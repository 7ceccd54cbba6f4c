package check

import (
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/recordcheck/internal/model"
)

// dateLayouts contains the date formats accepted in input files.
// The order matters: more specific formats should come first.
var dateLayouts = []string{
	time.RFC3339,          // 2024-01-15T08:30:00Z
	"2006-01-02T15:04:05", // ISO 8601 without timezone
	"2006-01-02 15:04:05", // SQL-style datetime
	"2006-01-02",          // ISO date
	"01/02/2006",          // US slash date
	"01-02-2006",          // US dash date
	"2006/01/02",          // Year-first slash date
}

// ParseDate attempts to parse s using each accepted layout in turn.
// Surrounding whitespace is ignored.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceDate converts v to a date value. Dates pass through unchanged;
// strings are parsed; anything that cannot be parsed becomes null.
func CoerceDate(v model.Value) model.Value {
	switch v.Kind() {
	case model.KindDate:
		return v
	case model.KindString:
		if t, ok := ParseDate(v.Text()); ok {
			return model.DateValue(t)
		}
		return model.NullValue()
	default:
		return model.NullValue()
	}
}

// CoerceNumber converts v to a numeric value. Numbers pass through unchanged;
// strings are parsed as floats; anything else becomes null.
func CoerceNumber(v model.Value) model.Value {
	switch v.Kind() {
	case model.KindNumber:
		return v
	case model.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
		if err != nil {
			return model.NullValue()
		}
		return model.NumberValue(f)
	default:
		return model.NullValue()
	}
}
