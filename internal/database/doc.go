// Package database provides SQLite-based run history for recordcheck.
//
// This package implements the HistoryDB, which stores:
//   - One row per validation run with its summary and full JSON report
//   - One row per issue of a run, for per-check queries
//
// The history command reads it back to list runs and to compare the two
// most recent runs of a source file.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
