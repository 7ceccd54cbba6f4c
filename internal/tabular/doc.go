// Package tabular reads and writes the delimited text files recordcheck
// validates.
//
// Supported inputs are comma separated (.csv) and tab separated (.tsv, .tab)
// files with a header row. Cells are loaded as untyped strings; empty cells
// become null. Type coercion is left to the checks so that a value that does
// not parse never aborts a load.
//
// Design decision: We use encoding/csv from the standard library. It already
// implements RFC 4180 quoting for both separators, and none of the libraries
// we depend on elsewhere handle delimited text. Loading the whole file into
// memory matches the validation model, which needs every row for duplicate
// detection anyway.
package tabular
