package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and RulesFile.Rules() and
// provide specific information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when no input file is specified.
	ErrNoInput = errors.New("no input specified: provide at least one CSV or TSV file")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no file is ever validated.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrEmptyOutputDir is returned when the output directory is blank.
	ErrEmptyOutputDir = errors.New("invalid output directory: must not be empty")

	// ErrInvalidLogFormat is returned when the log format is neither text nor json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be \"text\" or \"json\"")

	// ErrInvalidRange is returned when a range rule has min greater than max
	// or no field name.
	ErrInvalidRange = errors.New("invalid range rule")

	// ErrInvalidDateFloor is returned when the date floor cannot be parsed.
	ErrInvalidDateFloor = errors.New("invalid date floor: expected YYYY-MM-DD")

	// ErrInvalidMaxAge is returned when the maximum age is negative.
	ErrInvalidMaxAge = errors.New("invalid max age: must be non-negative")

	// ErrInvalidPhoneDigits is returned when the phone digit bounds are not
	// positive or min exceeds max.
	ErrInvalidPhoneDigits = errors.New("invalid phone digit bounds")
)
