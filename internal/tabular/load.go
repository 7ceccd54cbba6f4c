package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/recordcheck/internal/model"
)

// utf8BOM is stripped from the first header cell. Spreadsheet exports
// commonly start with it.
const utf8BOM = "\ufeff"

// Format identifies a supported file layout.
type Format struct {
	// Name is a short label such as "csv".
	Name string

	// Comma is the field separator.
	Comma rune
}

// Supported formats.
var (
	FormatCSV = Format{Name: "csv", Comma: ','}
	FormatTSV = Format{Name: "tsv", Comma: '\t'}
)

// extensions maps lower-case file extensions to formats.
var extensions = map[string]Format{
	".csv": FormatCSV,
	".tsv": FormatTSV,
	".tab": FormatTSV,
}

// DetectFormat returns the format implied by the extension of path.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := extensions[ext]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// File is a loaded input together with the digest of its raw bytes.
type File struct {
	// Dataset holds the parsed rows.
	Dataset *model.Dataset

	// Format is the detected layout.
	Format Format

	// Fingerprint is the SHA3-256 digest of the file content.
	Fingerprint string
}

// Load reads path into a dataset. The format is chosen by extension, so an
// unsupported file fails before it is opened.
func Load(path string) (*File, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	ds, err := Parse(bytes.NewReader(data), path, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return &File{
		Dataset:     ds,
		Format:      format,
		Fingerprint: Fingerprint(data),
	}, nil
}

// Parse reads delimited text from r. The first record is the header.
// Short rows are padded with nulls; rows longer than the header are rejected.
func Parse(r io.Reader, source string, format Format) (*model.Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = format.Comma
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	ds := model.NewDataset(source, columns)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if len(record) > len(columns) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d cells, header has %d",
				ErrRowTooLong, line, len(record), len(columns))
		}

		row := make(model.Row, len(columns))
		for i, col := range columns {
			if i >= len(record) || record[i] == "" {
				row[col] = model.NullValue()
				continue
			}
			row[col] = model.StringValue(record[i])
		}
		ds.Append(row)
	}

	return ds, nil
}

// parseHeader trims header names and rejects blank or repeated ones.
func parseHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))

	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: column %d", ErrEmptyHeader, i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	return columns, nil
}
