package config

import (
	"fmt"
	"time"

	"github.com/nao1215/recordcheck/internal/check"
)

// RangeRule overrides or adds one numeric bound.
type RangeRule struct {
	// Field is the column name, e.g. "temperature".
	Field string `yaml:"field"`

	// Min and Max are inclusive.
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DateRule tunes the date plausibility check.
type DateRule struct {
	// TestDateColumn overrides the "test_date" column name.
	TestDateColumn string `yaml:"testDateColumn,omitempty"`

	// BirthDateColumn overrides the "birth_date" column name.
	BirthDateColumn string `yaml:"birthDateColumn,omitempty"`

	// Floor is the earliest plausible test date in YYYY-MM-DD form.
	Floor string `yaml:"floor,omitempty"`

	// MaxAge is the oldest plausible age in years. Zero keeps the default.
	MaxAge int `yaml:"maxAge,omitempty"`
}

// PhoneRule tunes the phone format check.
type PhoneRule struct {
	// Column overrides the "phone_number" column name.
	Column string `yaml:"column,omitempty"`

	// MinDigits and MaxDigits bound the digit count. Zero keeps the default.
	MinDigits int `yaml:"minDigits,omitempty"`
	MaxDigits int `yaml:"maxDigits,omitempty"`
}

// RulesFile represents the structure of the .recordcheck rules file.
// Every section is optional; anything left out keeps the built-in value.
type RulesFile struct {
	// DedupKeys replaces the duplicate detection key columns.
	DedupKeys []string `yaml:"dedupKeys,omitempty"`

	// Required replaces the required column list.
	Required []string `yaml:"required,omitempty"`

	// Ranges override bounds of catalog fields with the same name and
	// append bounds for new fields, in file order.
	Ranges []RangeRule `yaml:"ranges,omitempty"`

	// Dates tunes the date plausibility check.
	Dates DateRule `yaml:"dates,omitempty"`

	// Phone tunes the phone format check.
	Phone PhoneRule `yaml:"phone,omitempty"`
}

// Rules merges the file with the built-in catalog and validates the result.
func (rf *RulesFile) Rules() (check.Rules, error) {
	rules := check.DefaultRules()

	if len(rf.DedupKeys) > 0 {
		rules.DedupKeys = append([]string(nil), rf.DedupKeys...)
	}
	if len(rf.Required) > 0 {
		rules.Required = append([]string(nil), rf.Required...)
	}

	bounds, err := mergeBounds(rules.Bounds, rf.Ranges)
	if err != nil {
		return check.Rules{}, err
	}
	rules.Bounds = bounds

	if rf.Dates.TestDateColumn != "" {
		rules.Dates.TestDateColumn = rf.Dates.TestDateColumn
	}
	if rf.Dates.BirthDateColumn != "" {
		rules.Dates.BirthDateColumn = rf.Dates.BirthDateColumn
	}
	if rf.Dates.Floor != "" {
		floor, err := time.Parse(time.DateOnly, rf.Dates.Floor)
		if err != nil {
			return check.Rules{}, fmt.Errorf("%w: %q", ErrInvalidDateFloor, rf.Dates.Floor)
		}
		rules.Dates.Floor = floor
	}
	if rf.Dates.MaxAge < 0 {
		return check.Rules{}, fmt.Errorf("%w: %d", ErrInvalidMaxAge, rf.Dates.MaxAge)
	}
	if rf.Dates.MaxAge > 0 {
		rules.Dates.MaxAge = rf.Dates.MaxAge
	}

	if rf.Phone.Column != "" {
		rules.Phone.Column = rf.Phone.Column
	}
	if rf.Phone.MinDigits != 0 {
		rules.Phone.MinDigits = rf.Phone.MinDigits
	}
	if rf.Phone.MaxDigits != 0 {
		rules.Phone.MaxDigits = rf.Phone.MaxDigits
	}
	if err := rules.Phone.Validate(); err != nil {
		return check.Rules{}, fmt.Errorf("%w: %w", ErrInvalidPhoneDigits, err)
	}

	return rules, nil
}

// mergeBounds overrides catalog bounds by field name and appends new ones.
func mergeBounds(defaults []check.Bound, overrides []RangeRule) ([]check.Bound, error) {
	bounds := append([]check.Bound(nil), defaults...)

	for _, r := range overrides {
		if r.Field == "" {
			return nil, fmt.Errorf("%w: missing field name", ErrInvalidRange)
		}
		b := check.Bound{Field: r.Field, Min: r.Min, Max: r.Max}
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRange, err)
		}

		replaced := false
		for i := range bounds {
			if bounds[i].Field == r.Field {
				bounds[i] = b
				replaced = true
				break
			}
		}
		if !replaced {
			bounds = append(bounds, b)
		}
	}

	return bounds, nil
}
