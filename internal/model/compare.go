package model

import (
	"math"
	"time"
)

// Direction values describe how a source file changed between two runs.
const (
	DirectionImproved  = "improved"
	DirectionWorsened  = "worsened"
	DirectionUnchanged = "unchanged"
)

// RunSummary contains metadata about one run for comparison display.
type RunSummary struct {
	RunID            string    `json:"run_id"`
	Timestamp        time.Time `json:"timestamp"`
	Fingerprint      string    `json:"fingerprint,omitempty"`
	TotalRecords     int       `json:"total_records"`
	ValidRecords     int       `json:"valid_records"`
	CompletenessRate float64   `json:"completeness_rate"`
	AffectedRecords  int       `json:"affected_records"`
}

// NewRunSummary extracts the comparison metadata from a report.
func NewRunSummary(r *ValidationReport) RunSummary {
	return RunSummary{
		RunID:            r.RunID,
		Timestamp:        r.Timestamp,
		Fingerprint:      r.Fingerprint,
		TotalRecords:     r.TotalRecords,
		ValidRecords:     r.ValidRecords,
		CompletenessRate: r.Summary.CompletenessRate,
		AffectedRecords:  r.Summary.AffectedRecords,
	}
}

// IssueDelta is the change of one check between two runs.
type IssueDelta struct {
	Check    string `json:"check"`
	Column   string `json:"column,omitempty"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
}

// Delta returns Current minus Previous.
func (d IssueDelta) Delta() int {
	return d.Current - d.Previous
}

// Comparison holds the result of comparing two runs of the same source.
type Comparison struct {
	Source   string     `json:"source"`
	Previous RunSummary `json:"previous_run"`
	Current  RunSummary `json:"current_run"`

	// SameInput is true when both runs read byte-identical files.
	SameInput bool `json:"same_input"`

	// Appeared lists checks that found rows now but none before.
	Appeared []IssueDelta `json:"appeared,omitempty"`

	// Resolved lists checks that found rows before but none now.
	Resolved []IssueDelta `json:"resolved,omitempty"`

	// Changed lists checks that found rows in both runs, with different counts.
	Changed []IssueDelta `json:"changed,omitempty"`

	// UnchangedCount is the number of checks whose count did not move.
	UnchangedCount int `json:"unchanged_count"`

	// CompletenessDelta is the change in completeness rate, in points.
	CompletenessDelta float64 `json:"completeness_delta"`

	// Direction is "improved", "worsened" or "unchanged", judged by the
	// number of affected records.
	Direction string `json:"direction"`
}

// HasChanges reports whether any check count moved between the runs.
func (c *Comparison) HasChanges() bool {
	return len(c.Appeared)+len(c.Resolved)+len(c.Changed) > 0
}

// Compare compares two reports of the same source. Issues are matched by
// check and column; the result keeps the order in which checks appear in
// the current run, followed by checks only the previous run had.
func Compare(previous, current *ValidationReport) *Comparison {
	c := &Comparison{
		Source:    current.Source,
		Previous:  NewRunSummary(previous),
		Current:   NewRunSummary(current),
		SameInput: previous.Fingerprint != "" && previous.Fingerprint == current.Fingerprint,
	}

	prevCounts := make(map[string]int, len(previous.Issues))
	for _, issue := range previous.Issues {
		prevCounts[issueKey(issue)] += issue.Count
	}

	seen := make(map[string]bool, len(current.Issues))
	for _, issue := range current.Issues {
		key := issueKey(issue)
		if seen[key] {
			continue
		}
		seen[key] = true
		c.classify(IssueDelta{
			Check:    issue.Check,
			Column:   issue.Column,
			Previous: prevCounts[key],
			Current:  countFor(current.Issues, key),
		})
	}
	for _, issue := range previous.Issues {
		key := issueKey(issue)
		if seen[key] {
			continue
		}
		seen[key] = true
		c.classify(IssueDelta{
			Check:    issue.Check,
			Column:   issue.Column,
			Previous: prevCounts[key],
		})
	}

	c.CompletenessDelta = math.Round((c.Current.CompletenessRate-c.Previous.CompletenessRate)*100) / 100

	switch {
	case c.Current.AffectedRecords < c.Previous.AffectedRecords:
		c.Direction = DirectionImproved
	case c.Current.AffectedRecords > c.Previous.AffectedRecords:
		c.Direction = DirectionWorsened
	default:
		c.Direction = DirectionUnchanged
	}
	return c
}

// classify files a delta under the matching bucket.
func (c *Comparison) classify(d IssueDelta) {
	switch {
	case d.Previous == d.Current:
		c.UnchangedCount++
	case d.Previous == 0:
		c.Appeared = append(c.Appeared, d)
	case d.Current == 0:
		c.Resolved = append(c.Resolved, d)
	default:
		c.Changed = append(c.Changed, d)
	}
}

func issueKey(issue Issue) string {
	return issue.Check + "\x00" + issue.Column
}

func countFor(issues []Issue, key string) int {
	total := 0
	for _, issue := range issues {
		if issueKey(issue) == key {
			total += issue.Count
		}
	}
	return total
}
