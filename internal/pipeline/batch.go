package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/recordcheck/internal/model"
	"github.com/nao1215/recordcheck/internal/tabular"
)

// DefaultConcurrency is the number of files validated at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// Result is the outcome of validating one file.
type Result struct {
	// Path is the input file path.
	Path string

	// Dataset is the cleaned dataset. Nil if the file could not be loaded.
	Dataset *model.Dataset

	// Report is the validation report. Nil if the file could not be loaded.
	Report *model.ValidationReport

	// Err is the load error, the cancellation error or the first step
	// error. A run that found issues but completed has a nil Err.
	Err error
}

// Loaded reports whether the file was loaded and validated.
func (r *Result) Loaded() bool {
	return r.Report != nil
}

// BatchProcessor validates multiple files concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because it keeps the Pipeline focused on a single
// dataset, and a pipeline factory guarantees that no step state leaks
// between files.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each file.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of files validated at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// now stamps each report.
	now func() time.Time

	// version is recorded in each report.
	version string
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of files validated at once.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchClock sets the clock used to timestamp reports.
func WithBatchClock(now func() time.Time) BatchOption {
	return func(b *BatchProcessor) {
		if now != nil {
			b.now = now
		}
	}
}

// WithVersion sets the version string recorded in each report.
func WithVersion(version string) BatchOption {
	return func(b *BatchProcessor) {
		b.version = version
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each file to create a fresh
// pipeline instance.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessFile loads and validates a single file.
// A load failure is returned in Result.Err with no report, so nothing is
// emitted for that file.
func (bp *BatchProcessor) ProcessFile(ctx context.Context, path string) *Result {
	file, err := tabular.Load(path)
	if err != nil {
		bp.logger.Warn("failed to load file", "source", path, "error", err)
		return &Result{Path: path, Err: err}
	}

	ds := file.Dataset
	report := model.NewValidationReport(path, bp.now())
	report.Fingerprint = file.Fingerprint
	report.Version = bp.version
	report.TotalRecords = ds.Len()

	bp.logger.Debug("file loaded",
		"source", path,
		"format", file.Format.Name,
		"rows", ds.Len(),
		"columns", len(ds.Columns()),
	)

	err = bp.pipelineFactory().Execute(ctx, ds, report)
	report.Finalize(ds.Len())

	return &Result{
		Path:    path,
		Dataset: ds,
		Report:  report,
		Err:     err,
	}
}

// ProcessBatchWithCallback validates multiple files and calls callback for
// each completed file with its index in paths. The callback is called from
// the goroutine that validated the file, so it must be safe for concurrent
// use.
//
// Only cancellation is returned as an error; per-file failures are in the
// results.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	paths []string,
	callback func(result *Result, index int),
) error {
	bp.logger.Info("starting batch",
		"files", len(paths),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result := bp.ProcessFile(ctx, path)
			callback(result, i)

			if result.Report != nil && result.Report.Cancelled {
				return result.Err
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch complete",
		"files", len(paths),
		"elapsed", time.Since(startTime),
	)

	return err
}
