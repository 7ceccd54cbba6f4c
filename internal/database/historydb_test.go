package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/recordcheck/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// newReport builds a finalized report for source started at ts.
func newReport(source string, ts time.Time, total, valid int, issues ...model.Issue) *model.ValidationReport {
	r := model.NewValidationReport(source, ts)
	r.Fingerprint = "abc123"
	r.Version = "v0.1.0"
	r.TotalRecords = total
	r.AddIssues(issues...)
	r.Finalize(valid)
	return r
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Fatalf("expected ErrDatabaseNotFound, got %v", err)
		}
	})

	t.Run("reopens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.SaveRun(t.Context(), newReport("a.csv", time.Now(), 1, 1)); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
		_ = db.Close()

		reopened, err := Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer reopened.Close()

		runs, err := reopened.ListRuns(t.Context(), "", 0)
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run after reopen, got %d", len(runs))
		}
	})
}

// TestSaveRun tests storing and reading back a run.
func TestSaveRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := t.Context()

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	report := newReport("records.csv", ts, 4, 3,
		model.NewIssue(model.CheckDuplicates, "patient_id", 1, "Removed 1 duplicate records"),
		model.NewIssue(model.CheckRequired, "facility_code", 2, "Found 2 records missing required field: facility_code"),
	)

	id, err := db.SaveRun(ctx, report)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	t.Run("report round trips", func(t *testing.T) {
		t.Parallel()

		got, err := db.GetRunByID(ctx, id)
		if err != nil {
			t.Fatalf("GetRunByID failed: %v", err)
		}
		if got.RunID != report.RunID || got.ValidRecords != 3 || len(got.Issues) != 2 {
			t.Errorf("unexpected report: %+v", got)
		}
		if !got.Timestamp.Equal(ts) {
			t.Errorf("expected timestamp %v, got %v", ts, got.Timestamp)
		}
	})

	t.Run("issues are stored in order", func(t *testing.T) {
		t.Parallel()

		issues, err := db.GetRunIssues(ctx, id)
		if err != nil {
			t.Fatalf("GetRunIssues failed: %v", err)
		}
		if len(issues) != 2 {
			t.Fatalf("expected 2 issues, got %d", len(issues))
		}
		if issues[0].Check != model.CheckDuplicates || issues[1].Count != 2 || issues[1].Severity != model.SeverityHigh {
			t.Errorf("unexpected issues: %+v", issues)
		}
	})

	t.Run("summary columns are stored", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "records.csv", 0)
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		run := runs[0]
		if run.CompletenessRate != 75 || run.AffectedRecords != 3 || !run.NeedsReview {
			t.Errorf("unexpected run record: %+v", run)
		}
		if run.Source != SourceKey("records.csv") || run.Fingerprint != "abc123" || run.Version != "v0.1.0" {
			t.Errorf("unexpected run metadata: %+v", run)
		}
		if !run.Timestamp.Equal(ts) {
			t.Errorf("expected timestamp %v, got %v", ts, run.Timestamp)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		if _, err := db.GetRunByID(ctx, id+100); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}

// TestRunQueries tests ordering, filtering and pruning.
func TestRunQueries(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := t.Context()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, source := range []string{"a.csv", "b.csv", "a.csv", "./a.csv"} {
		if _, err := db.SaveRun(ctx, newReport(source, base.Add(time.Duration(i)*time.Hour), 10, 10-i)); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	t.Run("latest runs newest first", func(t *testing.T) {
		t.Parallel()

		reports, err := db.GetLatestRuns(ctx, "a.csv", 2)
		if err != nil {
			t.Fatalf("GetLatestRuns failed: %v", err)
		}
		if len(reports) != 2 {
			t.Fatalf("expected 2 reports, got %d", len(reports))
		}
		if reports[0].ValidRecords != 7 || reports[1].ValidRecords != 8 {
			t.Errorf("unexpected order: %d, %d", reports[0].ValidRecords, reports[1].ValidRecords)
		}
	})

	t.Run("list all sources", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "", 0)
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 4 {
			t.Errorf("expected 4 runs, got %d", len(runs))
		}

		limited, err := db.ListRuns(ctx, "", 1)
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(limited) != 1 || limited[0].ValidRecords != 7 {
			t.Errorf("unexpected limited runs: %+v", limited)
		}

		sources, err := db.ListSources(ctx)
		if err != nil {
			t.Fatalf("ListSources failed: %v", err)
		}
		if len(sources) != 2 {
			t.Errorf("expected 2 sources, got %v", sources)
		}
	})
}

// TestDeleteRunsBefore tests pruning old runs.
func TestDeleteRunsBefore(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := t.Context()

	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	issue := model.NewIssue(model.CheckPhone, "phone_number", 1, "Found 1 records with invalid phone number format")

	oldID, err := db.SaveRun(ctx, newReport("a.csv", old, 1, 1, issue))
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if _, err := db.SaveRun(ctx, newReport("a.csv", recent, 1, 1, issue)); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	removed, err := db.DeleteRunsBefore(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DeleteRunsBefore failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed run, got %d", removed)
	}

	issues, err := db.GetRunIssues(ctx, oldID)
	if err != nil {
		t.Fatalf("GetRunIssues failed: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected issues of removed run to be gone, got %d", len(issues))
	}

	runs, err := db.ListRuns(ctx, "a.csv", 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || !runs[0].Timestamp.Equal(recent) {
		t.Errorf("unexpected remaining runs: %+v", runs)
	}
}

// TestParseTimestamp tests the accepted timestamp formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	expected := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	for _, s := range []string{
		"2024-06-01 12:30:00.000000000",
		"2024-06-01 12:30:00",
		"2024-06-01T12:30:00Z",
	} {
		if got := parseTimestamp(s); !got.Equal(expected) {
			t.Errorf("parseTimestamp(%q) = %v, expected %v", s, got, expected)
		}
	}
	if !parseTimestamp("not a time").IsZero() {
		t.Error("expected zero time for garbage")
	}
}

// TestSourceKey tests that equivalent paths share a key.
func TestSourceKey(t *testing.T) {
	t.Parallel()

	if SourceKey("a.csv") != SourceKey("./a.csv") {
		t.Error("expected relative paths to share a key")
	}
	if !filepath.IsAbs(SourceKey("a.csv")) {
		t.Error("expected an absolute key")
	}
}
