package model

// Row maps a column name to its cell value.
type Row map[string]Value

// Get returns the value stored under column, or null if the row has none.
func (r Row) Get(column string) Value {
	v, ok := r[column]
	if !ok {
		return NullValue()
	}
	return v
}

// Dataset is an ordered, in-memory table loaded from a tabular source.
//
// Design decision: A Dataset is owned by exactly one validation run and is
// passed by pointer through every pipeline step. Steps either read it or
// transform a column in place; nothing holds a second reference, so there
// is no aliasing between runs.
type Dataset struct {
	// Source is the path the dataset was loaded from.
	Source string

	// columns keeps the header order so the cleaned output has the same shape.
	columns []string

	// index maps a column name to its position in columns.
	index map[string]int

	// rows holds the records in original order.
	rows []Row
}

// NewDataset creates an empty dataset with the given header.
func NewDataset(source string, columns []string) *Dataset {
	ds := &Dataset{
		Source:  source,
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
		rows:    make([]Row, 0),
	}
	copy(ds.columns, columns)
	for i, c := range columns {
		ds.index[c] = i
	}
	return ds
}

// HasColumn reports whether the dataset exposes the named column.
// Every check asks this before acting; absent columns are skipped.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Columns returns a copy of the header in original order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Row returns the i-th row. The returned map is the dataset's own row, so
// writes through it are visible to later steps.
func (d *Dataset) Row(i int) Row {
	return d.rows[i]
}

// Rows returns the backing row slice in original order.
func (d *Dataset) Rows() []Row {
	return d.rows
}

// Append adds a row at the end of the dataset. Columns not in the header
// are ignored; header columns missing from the row are stored as null.
func (d *Dataset) Append(row Row) {
	r := make(Row, len(d.columns))
	for _, c := range d.columns {
		r[c] = row.Get(c)
	}
	d.rows = append(d.rows, r)
}

// Transform replaces every value of column with fn(value), in place.
// It is a no-op when the column is absent.
func (d *Dataset) Transform(column string, fn func(Value) Value) {
	if !d.HasColumn(column) {
		return
	}
	for _, r := range d.rows {
		r[column] = fn(r.Get(column))
	}
}

// Count returns how many rows satisfy pred for the given column.
// Absent columns count zero.
func (d *Dataset) Count(column string, pred func(Value) bool) int {
	if !d.HasColumn(column) {
		return 0
	}
	n := 0
	for _, r := range d.rows {
		if pred(r.Get(column)) {
			n++
		}
	}
	return n
}

// Retain keeps only the rows for which keep returns true, preserving order,
// and returns the number of rows removed.
func (d *Dataset) Retain(keep func(i int, r Row) bool) int {
	kept := d.rows[:0]
	for i, r := range d.rows {
		if keep(i, r) {
			kept = append(kept, r)
		}
	}
	removed := len(d.rows) - len(kept)
	// Clear the tail so dropped rows can be collected.
	for i := len(kept); i < len(d.rows); i++ {
		d.rows[i] = nil
	}
	d.rows = kept
	return removed
}
