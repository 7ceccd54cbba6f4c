package check

import (
	"fmt"
	"math"
	"time"

	"github.com/nao1215/recordcheck/internal/model"
)

// Default date rule values.
const (
	// DefaultTestDateColumn is the column holding the date a test was taken.
	DefaultTestDateColumn = "test_date"

	// DefaultBirthDateColumn is the column holding the patient's birth date.
	DefaultBirthDateColumn = "birth_date"

	// DefaultMaxAge is the oldest plausible age in years.
	DefaultMaxAge = 110

	// daysPerYear accounts for leap years when deriving ages.
	daysPerYear = 365.25
)

// DefaultDateFloor is the earliest plausible test date.
var DefaultDateFloor = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateRules configures ValidateDates.
type DateRules struct {
	// TestDateColumn is checked against now and Floor.
	TestDateColumn string

	// BirthDateColumn is used to derive ages.
	BirthDateColumn string

	// Floor is the earliest plausible test date.
	Floor time.Time

	// MaxAge is the oldest plausible age in years. Ages below zero are
	// always improbable.
	MaxAge int
}

// DefaultDateRules returns the built-in date rules.
func DefaultDateRules() DateRules {
	return DateRules{
		TestDateColumn:  DefaultTestDateColumn,
		BirthDateColumn: DefaultBirthDateColumn,
		Floor:           DefaultDateFloor,
		MaxAge:          DefaultMaxAge,
	}
}

// AgeInYears returns floor((now - birth) / 365.25 days).
func AgeInYears(birth, now time.Time) int {
	days := now.Sub(birth).Hours() / 24
	return int(math.Floor(days / daysPerYear))
}

// ValidateDates coerces the test and birth date columns to dates in place
// and reports implausible values. Unparseable dates become null and are not
// counted here.
func ValidateDates(ds *model.Dataset, rules DateRules, now time.Time) []model.Issue {
	var issues []model.Issue

	if ds.HasColumn(rules.TestDateColumn) {
		ds.Transform(rules.TestDateColumn, CoerceDate)

		future := ds.Count(rules.TestDateColumn, func(v model.Value) bool {
			t, ok := v.Time()
			return ok && t.After(now)
		})
		if future > 0 {
			issues = append(issues, model.NewIssue(model.CheckFutureDates, rules.TestDateColumn, future,
				fmt.Sprintf("Found %d records with future test dates", future)))
		}

		early := ds.Count(rules.TestDateColumn, func(v model.Value) bool {
			t, ok := v.Time()
			return ok && t.Before(rules.Floor)
		})
		if early > 0 {
			issues = append(issues, model.NewIssue(model.CheckEarlyDates, rules.TestDateColumn, early,
				fmt.Sprintf("Found %d records with test dates before %d", early, rules.Floor.Year())))
		}
	}

	if ds.HasColumn(rules.BirthDateColumn) {
		ds.Transform(rules.BirthDateColumn, CoerceDate)

		improbable := ds.Count(rules.BirthDateColumn, func(v model.Value) bool {
			t, ok := v.Time()
			if !ok {
				return false
			}
			age := AgeInYears(t, now)
			return age < 0 || age > rules.MaxAge
		})
		if improbable > 0 {
			issues = append(issues, model.NewIssue(model.CheckImprobableAge, rules.BirthDateColumn, improbable,
				fmt.Sprintf("Found %d records with improbable age (<0 or >%d)", improbable, rules.MaxAge)))
		}
	}

	return issues
}
