package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/recordcheck/internal/config"
	"github.com/nao1215/recordcheck/internal/model"
)

// fixedRecords is sampleRecords with the temperature and phone of P002 fixed.
const fixedRecords = `patient_id,test_date,birth_date,temperature,heart_rate,phone_number,facility_code
P001,2024-01-15,1980-05-01,36.5,72,(555) 123-4567,F01
P001,2024-01-15,1980-05-01,36.5,72,(555) 123-4567,F01
P002,2099-01-15,1990-02-02,37.5,80,555-111-2222,F02
P003,2024-02-01,1975-03-03,37.0,65,+1 555 987 6543,
`

// recordRun validates content as records.csv in dir, recording the run in
// dbDir, and returns the input path.
func recordRun(t *testing.T, dir, dbDir, content string) string {
	t.Helper()
	input := writeFixture(t, dir, "records.csv", content)
	rules := writeRules(t, dir)
	_, stderr, err := runCLI(t, "validate", "-c", rules, "-d", filepath.Join(dir, "out"), "--db-dir", dbDir, input)
	if err != nil {
		t.Fatalf("validate failed: %v\nstderr: %s", err, stderr)
	}
	return input
}

// TestNewHistoryCmd tests the history command flags.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "list", shorthand: "l", defValue: "false"},
		{name: "limit", shorthand: "n", defValue: "0"},
		{name: "with-run-id", shorthand: "i", defValue: "0"},
		{name: "prune-before", defValue: ""},
		{name: "db-dir", defValue: ""},
		{name: "json", shorthand: "j", defValue: "false"},
		{name: "markdown", shorthand: "m", defValue: "false"},
		{name: "csv", defValue: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestHistoryWithoutDatabase tests the history command before any run.
func TestHistoryWithoutDatabase(t *testing.T) {
	t.Parallel()

	t.Run("list reports no runs", func(t *testing.T) {
		t.Parallel()
		dbDir := filepath.Join(t.TempDir(), "db")
		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir, "--list")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No runs recorded yet.") {
			t.Errorf("unexpected output: %q", stdout)
		}
	})

	t.Run("compare fails", func(t *testing.T) {
		t.Parallel()
		dbDir := filepath.Join(t.TempDir(), "db")
		_, _, err := runCLI(t, "history", "--db-dir", dbDir, "records.csv")
		if !errors.Is(err, errNoHistory) {
			t.Errorf("expected errNoHistory, got %v", err)
		}
	})

	t.Run("sources report no runs", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := runCLI(t, "history", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No runs recorded yet.") {
			t.Errorf("unexpected output: %q", stdout)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, "history", "--db-dir", t.TempDir(), "--json", "--csv", "records.csv")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

// TestHistoryCommand tests listing, comparing and pruning recorded runs.
func TestHistoryCommand(t *testing.T) {
	t.Parallel()

	t.Run("compare latest two runs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")
		recordRun(t, dir, dbDir, sampleRecords)
		input := recordRun(t, dir, dbDir, fixedRecords)

		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir, "--json", input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var c model.Comparison
		if err := json.Unmarshal([]byte(stdout), &c); err != nil {
			t.Fatalf("stdout is not a JSON comparison: %v\n%s", err, stdout)
		}
		if c.SameInput {
			t.Error("expected different inputs")
		}
		if c.Direction != model.DirectionImproved {
			t.Errorf("expected improved, got %q", c.Direction)
		}

		resolved := make(map[string]bool)
		for _, d := range c.Resolved {
			resolved[d.Check] = true
		}
		if !resolved[model.CheckRange] || !resolved[model.CheckPhone] {
			t.Errorf("expected range and phone issues resolved, got %+v", c.Resolved)
		}
		if len(c.Appeared) != 0 {
			t.Errorf("expected nothing to appear, got %+v", c.Appeared)
		}
	})

	t.Run("compare requires two runs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")
		input := recordRun(t, dir, dbDir, sampleRecords)

		_, _, err := runCLI(t, "history", "--db-dir", dbDir, input)
		if err == nil || !strings.Contains(err.Error(), "at least 2 runs") {
			t.Errorf("expected error about run count, got %v", err)
		}
	})

	t.Run("list runs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")
		recordRun(t, dir, dbDir, sampleRecords)
		input := recordRun(t, dir, dbDir, fixedRecords)

		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir, "--list")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Recorded runs (2)") {
			t.Errorf("expected two runs: %s", stdout)
		}
		if !strings.Contains(stdout, input) {
			t.Errorf("expected source path in listing: %s", stdout)
		}

		stdout, _, err = runCLI(t, "history", "--db-dir", dbDir, "--list", "-n", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Recorded runs (1)") {
			t.Errorf("expected limit to apply: %s", stdout)
		}

		stdout, _, err = runCLI(t, "history", "--db-dir", dbDir, "--list", filepath.Join(dir, "other.csv"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No runs recorded for") {
			t.Errorf("expected no runs for other source: %s", stdout)
		}
	})

	t.Run("list sources", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")
		input := recordRun(t, dir, dbDir, sampleRecords)

		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Recorded sources (1)") || !strings.Contains(stdout, input) {
			t.Errorf("expected the validated file to be listed: %s", stdout)
		}
	})

	t.Run("verbose list shows stored issues", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")
		input := recordRun(t, dir, dbDir, sampleRecords)

		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir, "--list", "--verbose", input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"Found 1 records with invalid phone numbers",
			"Found 1 records with temperature outside range [35, 42]",
		} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in listing: %s", want, stdout)
			}
		}

		stdout, _, err = runCLI(t, "history", "--db-dir", dbDir, "--list", input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(stdout, "invalid phone numbers") {
			t.Errorf("expected no issue lines without --verbose: %s", stdout)
		}
	})

	t.Run("compare with run ID in markdown", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")
		recordRun(t, dir, dbDir, sampleRecords)
		input := recordRun(t, dir, dbDir, fixedRecords)

		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir, "--markdown", "-i", "1", input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "# Recordcheck Run Comparison") {
			t.Errorf("expected markdown comparison: %s", stdout)
		}

		_, _, err = runCLI(t, "history", "--db-dir", dbDir, "-i", "99", input)
		if err == nil {
			t.Error("expected error for unknown run ID")
		}
	})

	t.Run("prune", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbDir := filepath.Join(dir, "db")
		recordRun(t, dir, dbDir, sampleRecords)

		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir, "--prune-before", "2000-01-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Removed 0 run(s)") {
			t.Errorf("unexpected output: %s", stdout)
		}

		stdout, _, err = runCLI(t, "history", "--db-dir", dbDir, "--prune-before", "2999-01-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Removed 1 run(s)") {
			t.Errorf("unexpected output: %s", stdout)
		}

		if _, _, err := runCLI(t, "history", "--db-dir", dbDir, "--prune-before", "yesterday"); err == nil {
			t.Error("expected error for invalid date")
		}
	})
}
