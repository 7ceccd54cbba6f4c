package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Issue is a single validation finding: a human-readable description plus
// the number of rows it affects.
//
// Design decision: One issue can stand for many rows ("Found 12 records with
// future test dates"), so we keep the affected-row count next to the text
// instead of collapsing everything into a single "records with issues"
// integer that cannot be mapped back to rows.
type Issue struct {
	// Check is the catalog rule that produced the issue (see severity.go).
	Check string `json:"check"`

	// Column is the column the issue refers to, if any.
	Column string `json:"column,omitempty"`

	// Description is the human-readable finding.
	Description string `json:"description"`

	// Count is the number of affected rows. Zero means the check ran and
	// found nothing worth reviewing.
	Count int `json:"count"`

	// Severity is the review priority.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`
}

// NewIssue creates an issue for the given check. Severity comes from the
// check catalog; an issue that affects no rows is informational.
func NewIssue(check, column string, count int, description string) Issue {
	severity := SeverityInfo
	if count > 0 {
		severity = GetSeverity(check)
	}
	return Issue{
		Check:        check,
		Column:       column,
		Description:  description,
		Count:        count,
		Severity:     severity,
		SeverityText: severity.String(),
	}
}

// NeedsReview reports whether the issue affects at least one row.
func (i Issue) NeedsReview() bool {
	return i.Count > 0
}

// Summary holds the derived figures of a validation run.
type Summary struct {
	// CompletenessRate is valid/total*100 rounded to two decimals.
	// It is 0 for empty input.
	CompletenessRate float64 `json:"completeness_rate"`

	// IssueCount is the number of issue entries in the report.
	IssueCount int `json:"issue_count"`

	// AffectedRecords is the sum of issue counts. A row may be counted
	// more than once when several checks flag it.
	AffectedRecords int `json:"affected_records"`

	// DuplicatesRemoved is TotalRecords minus ValidRecords.
	DuplicatesRemoved int `json:"duplicates_removed"`

	// NeedsReview is true when any issue affects at least one row.
	NeedsReview bool `json:"needs_review"`

	// === Severity Summary ===

	HighCount   int `json:"high_count"`
	MediumCount int `json:"medium_count"`
	LowCount    int `json:"low_count"`
	InfoCount   int `json:"info_count"`
}

// ValidationReport is the result of validating one dataset.
type ValidationReport struct {
	// RunID uniquely identifies the run in the history database.
	RunID string `json:"run_id"`

	// Source is the input file path.
	Source string `json:"source"`

	// Fingerprint is a digest of the input file content, used to tell
	// re-runs of the same file apart from runs of an edited file.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp"`

	// Version is the recordcheck version that produced the report.
	Version string `json:"version"`

	// TotalRecords is the row count before validation.
	TotalRecords int `json:"total_records"`

	// ValidRecords is the row count after deduplication.
	ValidRecords int `json:"valid_records"`

	// Issues are kept in the order the checks ran.
	Issues []Issue `json:"issues"`

	// Summary is filled by Finalize.
	Summary Summary `json:"summary"`

	// PerformedChecks lists the pipeline steps that completed without error.
	PerformedChecks []string `json:"performed_checks,omitempty"`

	// CleanedFile is the path of the cleaned dataset, if one was written.
	CleanedFile string `json:"cleaned_file,omitempty"`

	// Cancelled is true if the run was interrupted before all checks ran.
	Cancelled bool `json:"cancelled,omitempty"`

	// Error holds the last step error, if any.
	// It is not serialized to JSON; ErrorMessage carries the text.
	Error error `json:"-"`

	// ErrorMessage is the serializable form of Error.
	ErrorMessage string `json:"error,omitempty"`
}

// NewValidationReport creates a report for the given source with a fresh
// run ID.
func NewValidationReport(source string, startedAt time.Time) *ValidationReport {
	return &ValidationReport{
		RunID:     uuid.NewString(),
		Source:    source,
		Timestamp: startedAt,
		Issues:    make([]Issue, 0),
	}
}

// AddIssue appends an issue in call order.
func (r *ValidationReport) AddIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// AddIssues appends several issues in order.
func (r *ValidationReport) AddIssues(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

// Finalize records the post-validation row count and computes the summary.
// It is safe to call more than once.
func (r *ValidationReport) Finalize(validRecords int) {
	r.ValidRecords = validRecords

	s := Summary{
		CompletenessRate:  CompletenessRate(validRecords, r.TotalRecords),
		IssueCount:        len(r.Issues),
		DuplicatesRemoved: r.TotalRecords - validRecords,
	}
	for _, issue := range r.Issues {
		s.AffectedRecords += issue.Count
		if issue.NeedsReview() {
			s.NeedsReview = true
		}
		switch issue.Severity {
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
	r.Summary = s

	if r.Error != nil {
		r.ErrorMessage = r.Error.Error()
	}
}

// GetIssuesBySeverity returns issues filtered by severity, in call order.
func (r *ValidationReport) GetIssuesBySeverity(severity Severity) []Issue {
	var result []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			result = append(result, issue)
		}
	}
	return result
}

// CompletenessRate returns valid/total*100 rounded to two decimals, clamped
// to [0, 100]. Empty input yields 0.
func CompletenessRate(valid, total int) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(valid) / float64(total) * 100
	rate = math.Round(rate*100) / 100
	return math.Max(0, math.Min(100, rate))
}
