package tabular

import "errors"

// Sentinel errors for load failures.
var (
	// ErrUnsupportedFormat is returned when the file extension is not one of
	// the supported tabular formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoHeader is returned when the file has no header row.
	ErrNoHeader = errors.New("missing header row")

	// ErrEmptyHeader is returned when a header cell is blank.
	ErrEmptyHeader = errors.New("empty column name in header")

	// ErrDuplicateHeader is returned when two header cells share a name.
	ErrDuplicateHeader = errors.New("duplicate column name in header")

	// ErrRowTooLong is returned when a data row has more cells than the header.
	ErrRowTooLong = errors.New("row has more cells than the header")
)
