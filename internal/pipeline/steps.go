package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/nao1215/recordcheck/internal/check"
	"github.com/nao1215/recordcheck/internal/model"
)

// Step names as recorded in ValidationReport.PerformedChecks.
const (
	StepDeduplicate = "deduplicate"
	StepDates       = "dates"
	StepRanges      = "numeric_ranges"
	StepRequired    = "required_fields"
	StepPhone       = "phone_numbers"
)

// DedupStep removes duplicate rows. It is the only step that removes rows.
type DedupStep struct {
	keys []string
}

// NewDedupStep creates a deduplication step keyed on the given columns.
func NewDedupStep(keys []string) *DedupStep {
	return &DedupStep{keys: keys}
}

// Name returns the step name.
func (s *DedupStep) Name() string {
	return StepDeduplicate
}

// Do removes duplicates and always records one issue, even when nothing
// was removed.
func (s *DedupStep) Do(_ context.Context, ds *model.Dataset, report *model.ValidationReport) error {
	issue, _ := check.RemoveDuplicates(ds, s.keys)
	report.AddIssue(issue)
	return nil
}

// DateStep coerces date columns and flags implausible dates.
type DateStep struct {
	rules check.DateRules
	now   func() time.Time
}

// NewDateStep creates a date plausibility step. now is read once per run.
func NewDateStep(rules check.DateRules, now func() time.Time) *DateStep {
	if now == nil {
		now = time.Now
	}
	return &DateStep{rules: rules, now: now}
}

// Name returns the step name.
func (s *DateStep) Name() string {
	return StepDates
}

// Do runs the date checks.
func (s *DateStep) Do(_ context.Context, ds *model.Dataset, report *model.ValidationReport) error {
	report.AddIssues(check.ValidateDates(ds, s.rules, s.now())...)
	return nil
}

// RangeStep coerces numeric columns and flags out-of-range values.
type RangeStep struct {
	bounds []check.Bound
}

// NewRangeStep creates a numeric range step over the given bounds.
func NewRangeStep(bounds []check.Bound) *RangeStep {
	return &RangeStep{bounds: bounds}
}

// Name returns the step name.
func (s *RangeStep) Name() string {
	return StepRanges
}

// Do runs the range checks in bound order. Unusable bounds are skipped and
// returned as one joined error; the remaining bounds are still applied.
func (s *RangeStep) Do(_ context.Context, ds *model.Dataset, report *model.ValidationReport) error {
	bounds := make([]check.Bound, 0, len(s.bounds))
	var errs []error
	for _, b := range s.bounds {
		if err := b.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		bounds = append(bounds, b)
	}

	report.AddIssues(check.ValidateRanges(ds, bounds)...)
	return errors.Join(errs...)
}

// RequiredStep flags missing values in required columns.
type RequiredStep struct {
	columns []string
}

// NewRequiredStep creates a required-fields step.
func NewRequiredStep(columns []string) *RequiredStep {
	return &RequiredStep{columns: columns}
}

// Name returns the step name.
func (s *RequiredStep) Name() string {
	return StepRequired
}

// Do runs the required-field checks.
func (s *RequiredStep) Do(_ context.Context, ds *model.Dataset, report *model.ValidationReport) error {
	report.AddIssues(check.ValidateRequired(ds, s.columns)...)
	return nil
}

// PhoneStep normalizes phone numbers and flags invalid ones.
type PhoneStep struct {
	rules check.PhoneRules
}

// NewPhoneStep creates a phone normalization step.
func NewPhoneStep(rules check.PhoneRules) *PhoneStep {
	return &PhoneStep{rules: rules}
}

// Name returns the step name.
func (s *PhoneStep) Name() string {
	return StepPhone
}

// Do runs the phone check. Unusable digit bounds fail the step before any
// value is normalized.
func (s *PhoneStep) Do(_ context.Context, ds *model.Dataset, report *model.ValidationReport) error {
	if err := s.rules.Validate(); err != nil {
		return err
	}
	report.AddIssues(check.ValidatePhones(ds, s.rules)...)
	return nil
}

// DefaultPipeline creates a pipeline with the full check catalog in its
// fixed order: deduplicate, dates, numeric ranges, required fields, phone.
//
// Design decision: Deduplication runs first so that the later counts refer
// to the rows that end up in the cleaned dataset. Required fields run after
// date coercion, so an unparseable test date is reported as missing.
func DefaultPipeline(rules check.Rules, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewDedupStep(rules.DedupKeys),
		NewDateStep(rules.Dates, p.now),
		NewRangeStep(rules.Bounds),
		NewRequiredStep(rules.Required),
		NewPhoneStep(rules.Phone),
	)

	return p
}
