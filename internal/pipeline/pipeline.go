package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/recordcheck/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the dataset as left by the
// previous step.
//
// Design decision: We use an interface rather than function types because
// steps carry their rule parameters and a Name() for logging and for the
// report's list of performed checks.
type Step interface {
	// Do executes the step. It may mutate ds and adds issues to report.
	// Problems with individual rows are issues, never errors; an error means
	// the step itself could not run.
	Do(ctx context.Context, ds *model.Dataset, report *model.ValidationReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool

	// now is the clock handed to time-dependent steps.
	now func() time.Time
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The failure is recorded in the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// WithClock sets the clock used by date checks. Tests pass a fixed time so
// that "future" and "age" results do not depend on when they run.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence over ds.
//
// Design decision: We check ctx.Done() before each step rather than
// during, because a single check over an in-memory dataset is short. A
// cancelled run therefore never leaves a check half applied.
//
// Returns the context error if cancelled, the first step error if
// continueOnError is false, or nil. Only steps that succeeded are listed in
// report.PerformedChecks.
func (p *Pipeline) Execute(ctx context.Context, ds *model.Dataset, report *model.ValidationReport) error {
	p.logger.Debug("running checks",
		"source", report.Source,
		"steps", p.StepCount(),
	)

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"source", report.Source,
				"reason", ctx.Err(),
			)
			report.Cancelled = true
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"source", report.Source,
			"rows", ds.Len(),
		)

		if err := step.Do(ctx, ds, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", report.Source,
				"error", err,
			)

			report.Error = err
			report.ErrorMessage = err.Error()

			if !p.continueOnError {
				return err
			}
			continue
		}

		report.PerformedChecks = append(report.PerformedChecks, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
