package frame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrColumnNotFound is returned when a named column is absent from a table
	ErrColumnNotFound = errors.New("column not found")
	// ErrLengthMismatch is returned when a column does not match the table's row count
	ErrLengthMismatch = errors.New("column length does not match table rows")
)

// Table is an ordered set of equally long columns.
// Operations never modify the receiver; they return a new Table.
type Table struct {
	cols []*Column
	rows int
}

// New assembles a table from columns that must all have the same length.
func New(cols ...*Column) (*Table, error) {
	t := &Table{}
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d: %w", c.Name(), c.Len(), t.rows, ErrLengthMismatch)
		}
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// Nrow returns the number of rows
func (t *Table) Nrow() int { return t.rows }

// Ncol returns the number of columns
func (t *Table) Ncol() int { return len(t.cols) }

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Columns returns the columns in order. The slice is a copy; the columns are shared.
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.cols...)
}

// Has reports whether every named column is present.
func (t *Table) Has(names ...string) bool {
	for _, n := range names {
		if t.index(n) < 0 {
			return false
		}
	}
	return true
}

// Col returns the first column with the given name.
func (t *Table) Col(name string) (*Column, error) {
	i := t.index(name)
	if i < 0 {
		return nil, fmt.Errorf("%q: %w", name, ErrColumnNotFound)
	}
	return t.cols[i], nil
}

func (t *Table) index(name string) int {
	for i, c := range t.cols {
		if c.Name() == name {
			return i
		}
	}
	return -1
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	out := &Table{rows: t.rows, cols: make([]*Column, len(t.cols))}
	for i, c := range t.cols {
		out.cols[i] = c.Clone("")
	}
	return out
}

// Rename returns a table whose column names are mapped through fn.
// Column data is shared with the receiver.
func (t *Table) Rename(fn func(string) string) *Table {
	out := &Table{rows: t.rows, cols: make([]*Column, len(t.cols))}
	for i, c := range t.cols {
		renamed := *c
		renamed.name = fn(c.Name())
		out.cols[i] = &renamed
	}
	return out
}

// Drop returns a table without the named columns. Absent names are ignored.
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &Table{rows: t.rows}
	for _, c := range t.cols {
		if !drop[c.Name()] {
			out.cols = append(out.cols, c)
		}
	}
	return out
}

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{rows: t.rows}
	for _, n := range names {
		c, err := t.Col(n)
		if err != nil {
			return nil, err
		}
		out.cols = append(out.cols, c)
	}
	return out, nil
}

// WithColumn returns a table where c replaces the column of the same name, or is appended.
func (t *Table) WithColumn(c *Column) (*Table, error) {
	if len(t.cols) > 0 && c.Len() != t.rows {
		return nil, fmt.Errorf("column %q has %d rows, want %d: %w", c.Name(), c.Len(), t.rows, ErrLengthMismatch)
	}
	out := &Table{rows: c.Len(), cols: append([]*Column(nil), t.cols...)}
	if i := t.index(c.Name()); i >= 0 {
		out.cols[i] = c
	} else {
		out.cols = append(out.cols, c)
	}
	return out, nil
}

// Take returns the given rows, in order.
func (t *Table) Take(rows []int) *Table {
	out := &Table{rows: len(rows), cols: make([]*Column, len(t.cols))}
	for i, c := range t.cols {
		out.cols[i] = c.take(rows)
	}
	return out
}

// Filter returns the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return t.Take(rows)
}

// RowKey encodes every cell of a row; two rows are exact duplicates iff their keys are equal.
func (t *Table) RowKey(row int) string {
	var b strings.Builder
	for _, c := range t.cols {
		if c.IsNull(row) {
			b.WriteString("-;")
			continue
		}
		s := c.Format(row)
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	return b.String()
}

// Records renders the table as text rows, header first.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, t.rows+1)
	out = append(out, t.Names())
	for i := 0; i < t.rows; i++ {
		row := make([]string, len(t.cols))
		for j, c := range t.cols {
			row[j] = c.Format(i)
		}
		out = append(out, row)
	}
	return out
}
