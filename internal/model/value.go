package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the dynamic type held by a Value.
type Kind int

const (
	// KindNull marks a missing value. Empty cells load as null, and values
	// that fail coercion degrade to null.
	KindNull Kind = iota

	// KindString is a raw or normalized text value.
	KindString

	// KindNumber is a value coerced to float64.
	KindNumber

	// KindDate is a value coerced to time.Time.
	KindDate
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// DateLayout is the layout used to render dates without a time component.
const DateLayout = "2006-01-02"

// DateTimeLayout is the layout used to render dates that carry a time of day.
const DateTimeLayout = "2006-01-02 15:04:05"

// Value is a single cell of a Dataset.
//
// Design decision: We use a small tagged struct rather than interface{}
// because every check needs to distinguish "missing" from "present but
// unparseable", and a closed set of kinds keeps type switches exhaustive.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	date time.Time
}

// NullValue returns a missing value.
func NullValue() Value {
	return Value{}
}

// StringValue returns a text value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue returns a numeric value. NaN is stored as null.
func NumberValue(f float64) Value {
	if math.IsNaN(f) {
		return NullValue()
	}
	return Value{kind: KindNumber, num: f}
}

// DateValue returns a date value.
func DateValue(t time.Time) Value {
	return Value{kind: KindDate, date: t}
}

// Kind returns the dynamic type of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsBlank reports whether the value is null or a string that contains only
// whitespace.
func (v Value) IsBlank() bool {
	if v.kind == KindNull {
		return true
	}
	return v.kind == KindString && strings.TrimSpace(v.str) == ""
}

// Text returns the string payload. It is only meaningful for KindString.
func (v Value) Text() string {
	return v.str
}

// Float returns the numeric payload and whether the value is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Time returns the date payload and whether the value is a date.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// Equal reports whether two values hold the same kind and payload.
// Two nulls are equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindDate:
		return v.date.Equal(other.date)
	default:
		return false
	}
}

// String renders the value the way it is written to the cleaned dataset.
// Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		h, m, s := v.date.Clock()
		if h == 0 && m == 0 && s == 0 && v.date.Nanosecond() == 0 {
			return v.date.Format(DateLayout)
		}
		return v.date.Format(DateTimeLayout)
	default:
		return ""
	}
}
