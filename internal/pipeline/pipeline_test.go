package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/recordcheck/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, ds *model.Dataset, report *model.ValidationReport) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, ds *model.Dataset, report *model.ValidationReport) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, ds, report)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// newTestRun returns an empty dataset and report for pipeline tests.
func newTestRun() (*model.Dataset, *model.ValidationReport) {
	return model.NewDataset("test.csv", []string{"patient_id"}),
		model.NewValidationReport("test.csv", time.Now())
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to default to false")
		}
		if p.now == nil || p.logger == nil {
			t.Error("expected clock and logger defaults")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		if p := New(WithContinueOnError(true)); !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})

	t.Run("applies WithClock option", func(t *testing.T) {
		t.Parallel()

		fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		p := New(WithClock(func() time.Time { return fixed }))
		if !p.now().Equal(fixed) {
			t.Errorf("expected fixed clock, got %v", p.now())
		}
	})

	t.Run("nil clock keeps the default", func(t *testing.T) {
		t.Parallel()

		if p := New(WithClock(nil)); p.now == nil {
			t.Error("expected default clock to be kept")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "first"})
	p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

	if p.StepCount() != 3 {
		t.Fatalf("expected 3 steps, got %d", p.StepCount())
	}

	expected := []string{"first", "second", "third"}
	for i, name := range p.StepNames() {
		if name != expected[i] {
			t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
		}
	}
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{
				name: name,
				doFunc: func(context.Context, *model.Dataset, *model.ValidationReport) error {
					order = append(order, name)
					return nil
				},
			}
		}

		p := New()
		p.AddSteps(record("a"), record("b"), record("c"))

		ds, report := newTestRun()
		if err := p.Execute(context.Background(), ds, report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Join(order, ",") != "a,b,c" {
			t.Errorf("unexpected execution order %v", order)
		}
		if strings.Join(report.PerformedChecks, ",") != "a,b,c" {
			t.Errorf("unexpected performed checks %v", report.PerformedChecks)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		failing := &mockStep{
			name: "failing",
			doFunc: func(context.Context, *model.Dataset, *model.ValidationReport) error {
				return errBoom
			},
		}
		after := &mockStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)

		ds, report := newTestRun()
		err := p.Execute(context.Background(), ds, report)

		if !errors.Is(err, errBoom) {
			t.Errorf("expected errBoom, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("expected later steps not to run")
		}
		if report.ErrorMessage != "boom" {
			t.Errorf("expected error recorded in report, got %q", report.ErrorMessage)
		}
	})

	t.Run("continues after error when configured", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name: "failing",
			doFunc: func(context.Context, *model.Dataset, *model.ValidationReport) error {
				return errors.New("boom")
			},
		}
		after := &mockStep{name: "after"}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		ds, report := newTestRun()
		if err := p.Execute(context.Background(), ds, report); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if after.callCount != 1 {
			t.Error("expected later step to run")
		}
		if report.Error == nil {
			t.Error("expected error recorded in report")
		}
		if strings.Join(report.PerformedChecks, ",") != "after" {
			t.Errorf("expected only the successful step, got %v", report.PerformedChecks)
		}
	})

	t.Run("stops before the next step when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		first := &mockStep{
			name: "first",
			doFunc: func(context.Context, *model.Dataset, *model.ValidationReport) error {
				cancel()
				return nil
			},
		}
		second := &mockStep{name: "second"}

		p := New()
		p.AddSteps(first, second)

		ds, report := newTestRun()
		err := p.Execute(ctx, ds, report)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("expected second step not to run")
		}
		if !report.Cancelled {
			t.Error("expected report to be marked cancelled")
		}
		if len(report.PerformedChecks) != 1 {
			t.Errorf("expected 1 performed check, got %v", report.PerformedChecks)
		}
	})
}

// TestPipelineWithLogger tests the WithLogger option.
func TestPipelineWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := New(WithLogger(logger))
	p.AddStep(&mockStep{name: "logged-step"})

	ds, report := newTestRun()
	if err := p.Execute(context.Background(), ds, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "logged-step") {
		t.Errorf("expected step name in log output, got: %s", buf.String())
	}
}
