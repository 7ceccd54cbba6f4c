package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/recordcheck/internal/model"
	"golang.org/x/text/message"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for sharing results in pull requests, tickets
// and wikis.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ValidationReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	p := newPrinter()

	w.writeHeader(md, report)
	w.writeSummary(md, p, report)
	w.writeIssues(md, p, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteComparison outputs the comparison of two runs in Markdown format.
func (w *MarkdownWriter) WriteComparison(c *model.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)
	p := newPrinter()

	md.H1("Recordcheck Run Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"", "Previous", "Current"},
		Rows: [][]string{
			{"Run Date", c.Previous.Timestamp.Format(timeLayout), c.Current.Timestamp.Format(timeLayout)},
			{"Run ID", "`" + c.Previous.RunID + "`", "`" + c.Current.RunID + "`"},
			{"Total Records", p.Sprintf("%d", c.Previous.TotalRecords), p.Sprintf("%d", c.Current.TotalRecords)},
			{"Valid Records", p.Sprintf("%d", c.Previous.ValidRecords), p.Sprintf("%d", c.Current.ValidRecords)},
			{"Completeness", p.Sprintf("%.2f%%", c.Previous.CompletenessRate), p.Sprintf("%.2f%%", c.Current.CompletenessRate)},
			{"Affected Records", p.Sprintf("%d", c.Previous.AffectedRecords), p.Sprintf("%d", c.Current.AffectedRecords)},
		},
	})
	md.PlainText("")

	switch c.Direction {
	case model.DirectionWorsened:
		md.Warningf("Data quality of `%s` worsened since the previous run.", c.Source)
	case model.DirectionImproved:
		md.Tipf("Data quality of `%s` improved since the previous run.", c.Source)
	default:
		md.Notef("No change in affected records for `%s`.", c.Source)
	}
	md.PlainText("")

	if !c.HasChanges() {
		md.PlainText("No changes in issue counts between the two runs.")
		md.PlainText("")
	} else {
		w.writeDeltaTable(md, p, "Appeared", c.Appeared)
		w.writeDeltaTable(md, p, "Resolved", c.Resolved)
		w.writeDeltaTable(md, p, "Changed", c.Changed)
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ValidationReport) {
	md.H1("Recordcheck Validation Report")
	md.PlainText("")

	rows := [][]string{
		{"Source", "`" + report.Source + "`"},
		{"Run ID", "`" + report.RunID + "`"},
		{"Run Date", report.Timestamp.Format(timeLayout)},
	}
	if report.Version != "" {
		rows = append(rows, []string{"Version", report.Version})
	}
	rows = append(rows, []string{"Status", w.getStatusText(report)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.ValidationReport) string {
	if report.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes record counts, the severity table and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, p *message.Printer, report *model.ValidationReport) {
	s := report.Summary

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Records", p.Sprintf("%d", report.TotalRecords)},
			{"Valid Records", p.Sprintf("%d", report.ValidRecords)},
			{"Duplicates Removed", p.Sprintf("%d", s.DuplicatesRemoved)},
			{"Completeness Rate", p.Sprintf("%.2f%%", s.CompletenessRate)},
			{"Affected Records", p.Sprintf("%d", s.AffectedRecords)},
		},
	})
	md.PlainText("")

	md.H2("Severity Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Issues"},
		Rows: [][]string{
			{"🟠 High", strconv.Itoa(s.HighCount)},
			{"🟡 Medium", strconv.Itoa(s.MediumCount)},
			{"🔵 Low", strconv.Itoa(s.LowCount)},
			{"⚪ Info", strconv.Itoa(s.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(s.IssueCount) + "**"},
		},
	})
	md.PlainText("")

	if s.NeedsReview {
		w.writePieChart(md, report)
	}
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of affected records per severity.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.ValidationReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Affected Records by Severity"),
		piechart.WithShowData(true),
	)

	for _, sev := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		affected := 0
		for _, issue := range report.GetIssuesBySeverity(sev) {
			affected += issue.Count
		}
		if affected > 0 {
			chart.LabelAndIntValue(checkTitle(sev.String()), uint64(affected))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ValidationReport) {
	s := report.Summary
	switch {
	case report.Cancelled || report.ErrorMessage != "":
		md.Cautionf("Validation did not complete. Only %d check(s) ran.", len(report.PerformedChecks))
	case s.HighCount > 0:
		md.Warningf("Required data is missing. %d high severity issue(s) need review.", s.HighCount)
	case s.MediumCount > 0:
		md.Importantf("Implausible values found. %d medium severity issue(s) need review.", s.MediumCount)
	case s.NeedsReview:
		md.Note("Only low severity issues found.")
	default:
		md.Tip("No issues found. The dataset passed every check.")
	}
	md.PlainText("")
}

// writeIssues writes the issue table followed by remediation details.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, p *message.Printer, report *model.ValidationReport) {
	md.H2("Issues")
	md.PlainText("")

	if len(report.Issues) == 0 {
		md.PlainText("No checks were run.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Issues))
	for i, issue := range report.Issues {
		column := issue.Column
		if column == "" {
			column = "-"
		}
		rows[i] = []string{
			checkTitle(issue.Check),
			column,
			issue.Description,
			p.Sprintf("%d", issue.Count),
			issue.SeverityText,
			statusText(issue),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Check", "Column", "Description", "Affected Records", "Severity", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, issue := range report.Issues {
		if !issue.NeedsReview() {
			continue
		}
		info := model.GetCheckInfo(issue.Check)
		md.Details(issue.Description, "**Impact:** "+info.Impact+"\n\n**Recommendation:** "+info.Recommendation)
	}
	md.PlainText("")
}

// writeDeltaTable writes one bucket of a comparison. Empty buckets are skipped.
func (w *MarkdownWriter) writeDeltaTable(md *markdown.Markdown, p *message.Printer, title string, deltas []model.IssueDelta) {
	if len(deltas) == 0 {
		return
	}
	md.H2(title)
	md.PlainText("")

	rows := make([][]string, len(deltas))
	for i, d := range deltas {
		column := d.Column
		if column == "" {
			column = "-"
		}
		rows[i] = []string{
			checkTitle(d.Check),
			column,
			p.Sprintf("%d", d.Previous),
			p.Sprintf("%d", d.Current),
			p.Sprintf("%+d", d.Delta()),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Check", "Column", "Previous", "Current", "Delta"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [recordcheck](https://github.com/nao1215/recordcheck)*")
}
