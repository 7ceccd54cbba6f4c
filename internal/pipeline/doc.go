// Package pipeline runs the validation checks over a dataset in a fixed
// order and validates batches of files concurrently.
//
// A validation run is: deduplicate, check dates, check numeric ranges, check
// required fields, normalize phone numbers. Each check is a Step that
// receives the dataset it may mutate and the report it adds issues to.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It provides consistent logging and cancellation between checks
// 2. The report records exactly which checks ran, even when a run is
// interrupted
// 3. Tests can insert fake steps to exercise ordering and failure handling
//
// One dataset is owned by one pipeline run and is never shared. Batches of
// files are spread over goroutines with errgroup, one file per goroutine.
package pipeline
