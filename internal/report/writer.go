package report

import (
	"io"
	"strings"

	"github.com/nao1215/recordcheck/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Writer defines the interface for report output.
// Implementations write validation results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. The validate command writes the same report to the
// console and to report files through this one API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ValidationReport) (int, error)

	// WriteComparison outputs the comparison of two runs of one source.
	WriteComparison(c *model.Comparison) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// newPrinter returns a printer that groups thousands ("1,250").
func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// checkTitle turns a check name such as "numeric_range" into "Numeric Range".
// A Caser keeps state, so each call gets its own.
func checkTitle(check string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(check, "_", " "))
}

// statusText is the per-issue review status shared by every format.
func statusText(issue model.Issue) string {
	if issue.NeedsReview() {
		return "REVIEW"
	}
	return "PASS"
}

// changeLabel names the bucket of a comparison delta.
func changeLabel(d model.IssueDelta) string {
	switch {
	case d.Previous == 0:
		return "appeared"
	case d.Current == 0:
		return "resolved"
	default:
		return "changed"
	}
}

// allDeltas returns the comparison deltas in appeared, resolved, changed order.
func allDeltas(c *model.Comparison) []model.IssueDelta {
	out := make([]model.IssueDelta, 0, len(c.Appeared)+len(c.Resolved)+len(c.Changed))
	out = append(out, c.Appeared...)
	out = append(out, c.Resolved...)
	return append(out, c.Changed...)
}
