package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nao1215/recordcheck/internal/model"
)

// summaryHeader is the header of the validation_summary_*.csv artifact.
var summaryHeader = []string{"Check", "Description", "Affected Records", "Severity", "Status"}

// comparisonHeader is the header of a comparison rendered as CSV.
var comparisonHeader = []string{"Check", "Column", "Previous", "Current", "Delta", "Change"}

// CSVWriter outputs one row per issue, for spreadsheet review.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the issue summary. Status is PASS for an issue that
// affects no rows and REVIEW otherwise.
func (w *CSVWriter) Write(report *model.ValidationReport) (int, error) {
	rows := make([][]string, 0, len(report.Issues)+1)
	rows = append(rows, summaryHeader)
	for _, issue := range report.Issues {
		rows = append(rows, []string{
			checkTitle(issue.Check),
			issue.Description,
			strconv.Itoa(issue.Count),
			issue.SeverityText,
			statusText(issue),
		})
	}
	return w.writeAll(rows)
}

// WriteComparison outputs one row per check whose count moved.
func (w *CSVWriter) WriteComparison(c *model.Comparison) (int, error) {
	deltas := allDeltas(c)
	rows := make([][]string, 0, len(deltas)+1)
	rows = append(rows, comparisonHeader)
	for _, d := range deltas {
		rows = append(rows, []string{
			checkTitle(d.Check),
			d.Column,
			strconv.Itoa(d.Previous),
			strconv.Itoa(d.Current),
			strconv.Itoa(d.Delta()),
			changeLabel(d),
		})
	}
	return w.writeAll(rows)
}

// writeAll writes the records and returns the number of bytes written.
func (w *CSVWriter) writeAll(rows [][]string) (int, error) {
	cw := &countingWriter{w: w.output}
	enc := csv.NewWriter(cw)
	if err := enc.WriteAll(rows); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// countingWriter counts bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
