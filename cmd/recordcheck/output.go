package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/recordcheck/internal/config"
	"github.com/nao1215/recordcheck/internal/pipeline"
	"github.com/nao1215/recordcheck/internal/report"
)

// outputFormat selects how console reports are rendered.
type outputFormat struct {
	json     bool
	markdown bool
	csv      bool
	verbose  bool
}

// newReportWriter returns the console writer for the selected format.
// Text is the default.
func newReportWriter(w io.Writer, f outputFormat) report.Writer {
	switch {
	case f.json:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case f.markdown:
		return report.NewMarkdownWriter(w)
	case f.csv:
		return report.NewCSVWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(f.verbose), report.WithShowEmpty(f.verbose))
	}
}

// openReportOutput returns the report destination: path when set, stdout
// otherwise. The returned close function must be called when done.
func openReportOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may describe patient data and should only be readable by the owner.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-provided output path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// outputReports writes the console report of every loaded file in input
// order, whatever order the files finished in.
func outputReports(cfg *config.Config, stdout io.Writer, results []*pipeline.Result) (err error) {
	out, closeOut, err := openReportOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := newReportWriter(out, outputFormat{
		json:     cfg.JSONReport,
		markdown: cfg.MarkdownReport,
		verbose:  cfg.Verbose,
	})
	for _, res := range results {
		if res == nil || !res.Loaded() {
			continue
		}
		if _, err := w.Write(res.Report); err != nil {
			return err
		}
	}
	return nil
}
