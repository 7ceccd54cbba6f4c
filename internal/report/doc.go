// Package report renders validation reports and run comparisons.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output, also used for report files
//   - MarkdownWriter: Markdown with tables, alerts and a mermaid chart
//   - CSVWriter: One row per issue with a PASS/REVIEW status
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably for console output and report files.
package report
