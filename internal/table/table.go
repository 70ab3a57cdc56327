package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Missing is the marker for an absent cell (pandas NaN on disk)
const Missing = ""

// Table is an in-memory CSV table. Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// MissingColumnError names a column a stage expected but the table lacks
type MissingColumnError struct {
	Column string
	File   string
}

func (e *MissingColumnError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("missing column %q", e.Column)
	}
	return fmt.Sprintf("%s: missing column %q", e.File, e.Column)
}

// New creates an empty table with the given header
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of col, or -1
func (t *Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether every column is present
func (t *Table) Has(cols ...string) bool {
	for _, c := range cols {
		if t.Index(c) < 0 {
			return false
		}
	}
	return true
}

// Require fails fast with a *MissingColumnError for the first absent column
func (t *Table) Require(file string, cols ...string) error {
	for _, c := range cols {
		if t.Index(c) < 0 {
			return &MissingColumnError{Column: c, File: file}
		}
	}
	return nil
}

// Append adds a row, padding short rows with Missing
func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Value returns the cell at row/col, Missing when the column is absent
func (t *Table) Value(row int, col string) string {
	i := t.Index(col)
	if i < 0 {
		return Missing
	}
	return t.Rows[row][i]
}

// Column returns a copy of one column's cells
func (t *Table) Column(col string) []string {
	i := t.Index(col)
	if i < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Floats parses a numeric column. Missing cells are an error; drop them first.
func (t *Table) Floats(col string) ([]float64, error) {
	i := t.Index(col)
	if i < 0 {
		return nil, &MissingColumnError{Column: col}
	}
	out := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", col, r+1, err)
		}
		out[r] = v
	}
	return out, nil
}

// Rename renames columns in place; unknown names are ignored
func (t *Table) Rename(names map[string]string) {
	for i, c := range t.Columns {
		if n, ok := names[c]; ok {
			t.Columns[i] = n
		}
	}
}

// SetColumns replaces the header positionally. The count must match.
func (t *Table) SetColumns(cols ...string) error {
	if len(cols) != len(t.Columns) {
		return fmt.Errorf("length mismatch: table has %d columns, %d names given", len(t.Columns), len(cols))
	}
	t.Columns = append([]string(nil), cols...)
	return nil
}

// Select returns a new table with only cols, in that order
func (t *Table) Select(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for j, c := range cols {
		idx[j] = t.Index(c)
		if idx[j] < 0 {
			return nil, &MissingColumnError{Column: c}
		}
	}

	out := New(cols...)
	out.Rows = make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]string, len(cols))
		for j, i := range idx {
			cells[j] = row[i]
		}
		out.Rows[r] = cells
	}
	return out, nil
}

// Filter returns the rows for which keep is true, in original order
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := New(t.Columns...)
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, append([]string(nil), row...))
		}
	}
	return out
}

// DropMissing drops rows with a missing value in any of cols (all columns
// when none are given)
func (t *Table) DropMissing(cols ...string) *Table {
	idx := make([]int, 0, len(t.Columns))
	if len(cols) == 0 {
		for i := range t.Columns {
			idx = append(idx, i)
		}
	} else {
		for _, c := range cols {
			if i := t.Index(c); i >= 0 {
				idx = append(idx, i)
			}
		}
	}

	return t.Filter(func(row []string) bool {
		for _, i := range idx {
			if strings.TrimSpace(row[i]) == Missing {
				return false
			}
		}
		return true
	})
}

// SetColumn adds col, or overwrites it when present
func (t *Table) SetColumn(col string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q: %d values for %d rows", col, len(values), len(t.Rows))
	}
	i := t.Index(col)
	if i < 0 {
		t.Columns = append(t.Columns, col)
		for r := range t.Rows {
			t.Rows[r] = append(t.Rows[r], values[r])
		}
		return nil
	}
	for r := range t.Rows {
		t.Rows[r][i] = values[r]
	}
	return nil
}

// Map rewrites every cell of col through fn
func (t *Table) Map(col string, fn func(string) string) error {
	i := t.Index(col)
	if i < 0 {
		return &MissingColumnError{Column: col}
	}
	for _, row := range t.Rows {
		row[i] = fn(row[i])
	}
	return nil
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out.Rows[r] = append([]string(nil), row...)
	}
	return out
}

// FormatFloat renders v the way the CSV outputs expect (shortest repr)
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
