package frame

import (
	"fmt"
	"strconv"
	"strings"
)

// FromRecords builds a table from a header and text rows, inferring each column's kind:
// Int when every non-empty cell is an integer, Float when every non-empty cell is numeric,
// String otherwise. Empty cells and the usual NA markers (NA, N/A, NaN, null, None, #N/A...)
// become null.
func FromRecords(header []string, rows [][]string) (*Table, error) {
	for i, r := range rows {
		if len(r) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(r), len(header))
		}
	}

	cols := make([]*Column, len(header))
	for j, name := range header {
		kind := inferKind(rows, j)
		c := NewColumn(name, kind, len(rows))
		for i, r := range rows {
			cell := r[j]
			if isMissing(cell) {
				continue
			}
			switch kind {
			case Int:
				v, _ := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
				c.SetInt(i, v)
			case Float:
				v, _ := strconv.ParseFloat(strings.TrimSpace(cell), 64)
				c.SetFloat(i, v)
			default:
				c.SetString(i, cell)
			}
		}
		cols[j] = c
	}

	t, err := New(cols...)
	if err != nil {
		return nil, err
	}
	t.rows = len(rows)
	return t, nil
}

func inferKind(rows [][]string, j int) Kind {
	kind := Int
	seen := false
	for _, r := range rows {
		cell := r[j]
		if isMissing(cell) {
			continue
		}
		seen = true
		s := strings.TrimSpace(cell)
		if kind == Int {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			kind = Float
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return String
		}
	}
	if !seen {
		// an all-empty column carries no type information
		return Float
	}
	return kind
}

// naTokens are the cell values read as null, besides blanks. Matching is exact after trimming.
var naTokens = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "-NaN": true, "-nan": true,
	"1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

func isMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || naTokens[s]
}
