package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/recordcheck/internal/model"
)

// WriteCSV writes ds to path as comma separated text with a header row.
// Columns keep their original order and values are rendered with
// model.Value.String, so nulls become empty cells. The parent directory is
// created if needed and the file is written with 0600 permissions because it
// holds patient data.
func WriteCSV(ds *model.Dataset, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // path is built from operator input
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	columns := ds.Columns()
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range ds.Rows() {
		for i, col := range columns {
			record[i] = row.Get(col).String()
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
