package report

import (
	"io"
	"strings"

	"github.com/nao1215/recordcheck/internal/model"
	"golang.org/x/text/message"
)

// timeLayout is how run timestamps are shown in text and markdown output.
const timeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether checks that found nothing are listed.
	showEmpty bool

	// verbose adds impact and recommendation lines to each issue.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to list checks that found nothing.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ValidationReport) (int, error) {
	var sb strings.Builder
	p := newPrinter()

	w.writeHeader(&sb, "RECORDCHECK VALIDATION REPORT")
	w.writeRunInfo(&sb, report)
	w.writeSummary(&sb, p, report)
	w.writeIssues(&sb, p, report)
	w.writeFooter(&sb, report)

	return io.WriteString(w.output, sb.String())
}

// WriteComparison outputs the comparison of two runs in human-readable format.
func (w *SimpleWriter) WriteComparison(c *model.Comparison) (int, error) {
	var sb strings.Builder
	p := newPrinter()

	w.writeHeader(&sb, "RECORDCHECK RUN COMPARISON")
	sb.WriteString(p.Sprintf("Source:         %s\n", c.Source))
	sb.WriteString(p.Sprintf("Previous run:   %s  (%s)\n", c.Previous.Timestamp.Format(timeLayout), c.Previous.RunID))
	sb.WriteString(p.Sprintf("Current run:    %s  (%s)\n", c.Current.Timestamp.Format(timeLayout), c.Current.RunID))
	if c.SameInput {
		sb.WriteString("Input:          unchanged (same fingerprint)\n")
	} else {
		sb.WriteString("Input:          modified\n")
	}
	sb.WriteString("\n")

	w.writeSection(&sb, "SUMMARY")
	sb.WriteString(p.Sprintf("  Total records:    %d -> %d\n", c.Previous.TotalRecords, c.Current.TotalRecords))
	sb.WriteString(p.Sprintf("  Valid records:    %d -> %d\n", c.Previous.ValidRecords, c.Current.ValidRecords))
	sb.WriteString(p.Sprintf("  Completeness:     %.2f%% -> %.2f%% (%+.2f)\n",
		c.Previous.CompletenessRate, c.Current.CompletenessRate, c.CompletenessDelta))
	sb.WriteString(p.Sprintf("  Affected records: %d -> %d\n", c.Previous.AffectedRecords, c.Current.AffectedRecords))
	sb.WriteString(p.Sprintf("  Overall:          %s\n\n", strings.ToUpper(c.Direction)))

	w.writeDeltas(&sb, p, "APPEARED", c.Appeared)
	w.writeDeltas(&sb, p, "RESOLVED", c.Resolved)
	w.writeDeltas(&sb, p, "CHANGED", c.Changed)

	if !c.HasChanges() {
		sb.WriteString("No changes in issue counts between the two runs.\n\n")
	}
	sb.WriteString(p.Sprintf("Unchanged checks: %d\n", c.UnchangedCount))

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the banner.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, title string) {
	const width = 70
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", width))
	sb.WriteString("\n")
	if pad := (width - len(title)) / 2; pad > 0 {
		sb.WriteString(strings.Repeat(" ", pad))
	}
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", width))
	sb.WriteString("\n\n")
}

// writeSection writes a section title between rules.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeRunInfo writes the source and run metadata.
func (w *SimpleWriter) writeRunInfo(sb *strings.Builder, report *model.ValidationReport) {
	sb.WriteString("Source:         " + report.Source + "\n")
	sb.WriteString("Run ID:         " + report.RunID + "\n")
	sb.WriteString("Run Date:       " + report.Timestamp.Format(timeLayout) + "\n")
	if report.Version != "" {
		sb.WriteString("Version:        " + report.Version + "\n")
	}

	switch {
	case report.Cancelled:
		sb.WriteString("Status:         CANCELLED (partial results)\n")
	case report.ErrorMessage != "":
		sb.WriteString("Status:         ERROR - " + report.ErrorMessage + "\n")
	default:
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes record counts and the severity summary.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, p *message.Printer, report *model.ValidationReport) {
	s := report.Summary
	w.writeSection(sb, "SUMMARY")

	sb.WriteString(p.Sprintf("  Total records:      %d\n", report.TotalRecords))
	sb.WriteString(p.Sprintf("  Valid records:      %d\n", report.ValidRecords))
	sb.WriteString(p.Sprintf("  Duplicates removed: %d\n", s.DuplicatesRemoved))
	sb.WriteString(p.Sprintf("  Completeness:       %.2f%%\n", s.CompletenessRate))
	if s.NeedsReview {
		sb.WriteString("  Needs review:       yes\n")
	} else {
		sb.WriteString("  Needs review:       no\n")
	}
	sb.WriteString("\n")

	sb.WriteString(p.Sprintf("  HIGH:   %d\n", s.HighCount))
	sb.WriteString(p.Sprintf("  MEDIUM: %d\n", s.MediumCount))
	sb.WriteString(p.Sprintf("  LOW:    %d\n", s.LowCount))
	sb.WriteString(p.Sprintf("  INFO:   %d\n", s.InfoCount))
	sb.WriteString("\n")
}

// writeIssues writes the issues in the order the checks ran.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, p *message.Printer, report *model.ValidationReport) {
	w.writeSection(sb, "ISSUES")

	written := 0
	for _, issue := range report.Issues {
		if !issue.NeedsReview() && !w.showEmpty {
			continue
		}
		written++
		sb.WriteString(p.Sprintf("  [%-6s] %s\n", issue.SeverityText, issue.Description))
		if w.verbose && issue.NeedsReview() {
			info := model.GetCheckInfo(issue.Check)
			sb.WriteString("           Impact:         " + info.Impact + "\n")
			sb.WriteString("           Recommendation: " + info.Recommendation + "\n")
		}
	}

	if written == 0 {
		sb.WriteString("  No issues found.\n")
	}
	sb.WriteString("\n")
}

// writeDeltas writes one bucket of a comparison. Empty buckets are skipped.
func (w *SimpleWriter) writeDeltas(sb *strings.Builder, p *message.Printer, title string, deltas []model.IssueDelta) {
	if len(deltas) == 0 {
		return
	}
	w.writeSection(sb, title)
	for _, d := range deltas {
		name := checkTitle(d.Check)
		if d.Column != "" {
			name += " (" + d.Column + ")"
		}
		sb.WriteString(p.Sprintf("  %-40s %d -> %d (%+d)\n", name, d.Previous, d.Current, d.Delta()))
	}
	sb.WriteString("\n")
}

// writeFooter writes the performed checks and output locations.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.ValidationReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if len(report.PerformedChecks) > 0 {
		sb.WriteString("Checks performed: " + strings.Join(report.PerformedChecks, ", ") + "\n")
	}
	if report.CleanedFile != "" {
		sb.WriteString("Cleaned data:     " + report.CleanedFile + "\n")
	}
	sb.WriteString("\n")
}
