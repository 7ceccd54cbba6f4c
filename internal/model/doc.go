// Package model defines the core data structures used throughout recordcheck.
//
// This package contains the following main types:
//   - Value: A single typed cell (null, string, number or date)
//   - Dataset: An ordered table of rows loaded from a tabular file
//   - Issue: A validation finding with its affected-row count
//   - ValidationReport: The result of validating one dataset
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (check, pipeline, report, database) need to
// use these types, so centralizing them prevents import cycles.
//
// The report types are designed to be serializable to JSON for report output
// and database storage.
package model
