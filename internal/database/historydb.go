package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/recordcheck/internal/model"
)

// FileName is the name of the history database inside the data directory.
const FileName = "recordcheck.db"

// busyTimeout is how long SQLite waits on a lock held by another process.
const busyTimeout = 5 * time.Second

// timestampLayout is the fixed-width UTC layout runs are stored with, so
// that ORDER BY timestamp sorts chronologically.
const timestampLayout = "2006-01-02 15:04:05.000000000"

// HistoryDB provides SQLite-based storage for validation runs.
//
// Design decision: We use a single database file for every source file
// rather than one per input. The history command can then list all runs
// in one query, and backup is a single file copy.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so that a history listing does
	// not block a running validation.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rwc"
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		mode = "rw"
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite applies _pragma parameters to every new connection.
	dsn := fmt.Sprintf("%s?mode=%s&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		dbPath, mode, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables(ctx context.Context) error {
	schema := `
	-- One row per validation run, with the full report as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		fingerprint TEXT,
		timestamp TEXT NOT NULL,
		version TEXT,
		total_records INTEGER NOT NULL,
		valid_records INTEGER NOT NULL,
		completeness_rate REAL NOT NULL,
		issue_count INTEGER NOT NULL,
		affected_records INTEGER NOT NULL,
		needs_review INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- One row per issue, in the order the checks ran
	CREATE TABLE IF NOT EXISTS run_issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		check_name TEXT NOT NULL,
		column_name TEXT,
		description TEXT NOT NULL,
		affected INTEGER NOT NULL,
		severity TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_run_issues_run ON run_issues(run_id);
	CREATE INDEX IF NOT EXISTS idx_run_issues_check ON run_issues(check_name);
	`

	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// SourceKey returns the key runs of a file are grouped under: its absolute,
// cleaned path. "records.csv" and "./records.csv" are the same source.
func SourceKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// RunRecord contains summary information about a stored run.
// This is used for listing history without loading full reports.
type RunRecord struct {
	ID               int64
	RunID            string
	Source           string
	Fingerprint      string
	Timestamp        time.Time
	Version          string
	TotalRecords     int
	ValidRecords     int
	CompletenessRate float64
	IssueCount       int
	AffectedRecords  int
	NeedsReview      bool
}

// SaveRun stores a finalized report and its issues in one transaction and
// returns the database ID of the run.
func (h *HistoryDB) SaveRun(ctx context.Context, report *model.ValidationReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after Commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, source, fingerprint, timestamp, version, total_records, valid_records,
		completeness_rate, issue_count, affected_records, needs_review, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID,
		SourceKey(report.Source),
		report.Fingerprint,
		report.Timestamp.UTC().Format(timestampLayout),
		report.Version,
		report.TotalRecords,
		report.ValidRecords,
		report.Summary.CompletenessRate,
		report.Summary.IssueCount,
		report.Summary.AffectedRecords,
		report.Summary.NeedsReview,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO run_issues (run_id, position, check_name, column_name, description, affected, severity)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare issue insert: %w", err)
	}
	defer stmt.Close()

	for i, issue := range report.Issues {
		if _, err := stmt.ExecContext(ctx, id, i, issue.Check, issue.Column, issue.Description, issue.Count, issue.SeverityText); err != nil {
			return 0, fmt.Errorf("failed to save issue %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// ListRuns returns run summaries, newest first. An empty source lists the
// runs of every source. A limit of zero or less means no limit.
func (h *HistoryDB) ListRuns(ctx context.Context, source string, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, run_id, source, fingerprint, timestamp, version, total_records, valid_records,
		completeness_rate, issue_count, affected_records, needs_review
	FROM runs
	WHERE (? = '' OR source = ?)
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`
	key := ""
	if source != "" {
		key = SourceKey(source)
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.db.QueryContext(ctx, query, key, key, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var fingerprint, version sql.NullString
		var timestamp string
		if err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.Source,
			&fingerprint,
			&timestamp,
			&version,
			&rec.TotalRecords,
			&rec.ValidRecords,
			&rec.CompletenessRate,
			&rec.IssueCount,
			&rec.AffectedRecords,
			&rec.NeedsReview,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.Fingerprint = fingerprint.String
		rec.Version = version.String
		rec.Timestamp = parseTimestamp(timestamp)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListSources returns every source with at least one run, sorted.
func (h *HistoryDB) ListSources(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT source FROM runs ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// GetLatestRuns returns the full reports of the n most recent runs of a
// source, newest first.
func (h *HistoryDB) GetLatestRuns(ctx context.Context, source string, n int) ([]*model.ValidationReport, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT report_json FROM runs
	WHERE source = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, SourceKey(source), n)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	defer rows.Close()

	var reports []*model.ValidationReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.ValidationReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// GetRunByID retrieves the full report of a run by its database ID.
func (h *HistoryDB) GetRunByID(ctx context.Context, id int64) (*model.ValidationReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.ValidationReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetRunIssues returns the stored issues of a run in check order.
func (h *HistoryDB) GetRunIssues(ctx context.Context, id int64) ([]model.Issue, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT check_name, column_name, description, affected
	FROM run_issues
	WHERE run_id = ?
	ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get issues: %w", err)
	}
	defer rows.Close()

	var issues []model.Issue
	for rows.Next() {
		var check, description string
		var column sql.NullString
		var affected int
		if err := rows.Scan(&check, &column, &description, &affected); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, model.NewIssue(check, column.String, affected, description))
	}

	return issues, rows.Err()
}

// DeleteRunsBefore removes runs that started before t, together with their
// issues, and returns the number of runs removed.
func (h *HistoryDB) DeleteRunsBefore(ctx context.Context, t time.Time) (int64, error) {
	cutoff := t.UTC().Format(timestampLayout)

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after Commit

	if _, err := tx.ExecContext(ctx, `
	DELETE FROM run_issues WHERE run_id IN (SELECT id FROM runs WHERE timestamp < ?)
	`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to delete issues: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted runs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletion: %w", err)
	}
	return removed, nil
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",  // SQLite default datetime format
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
