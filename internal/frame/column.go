package frame

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind is the storage type of a column.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Time
	Period
)

// String returns the lowercase kind name
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Time:
		return "time"
	case Period:
		return "period"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether values of this kind can be read with Column.Float.
func (k Kind) IsNumeric() bool {
	return k == Int || k == Float
}

// Layouts used when formatting temporal cells.
const (
	TimeLayout   = "2006-01-02 15:04:05"
	PeriodLayout = "2006-01"
)

// Column is a named, typed and nullable vector of cells.
// Int cells keep full int64 precision; Time and Period share the time slice.
type Column struct {
	name  string
	kind  Kind
	valid []bool
	strs  []string
	ints  []int64
	nums  []float64
	times []time.Time
}

// NewColumn creates a column of n null cells.
func NewColumn(name string, kind Kind, n int) *Column {
	c := &Column{name: name, kind: kind, valid: make([]bool, n)}
	switch kind {
	case String:
		c.strs = make([]string, n)
	case Int:
		c.ints = make([]int64, n)
	case Float:
		c.nums = make([]float64, n)
	case Time, Period:
		c.times = make([]time.Time, n)
	}
	return c
}

// NewStringColumn builds a String column where every value is present.
func NewStringColumn(name string, values []string) *Column {
	c := NewColumn(name, String, len(values))
	for i, v := range values {
		c.SetString(i, v)
	}
	return c
}

// NewFloatColumn builds a Float column. NaN values become null.
func NewFloatColumn(name string, values []float64) *Column {
	c := NewColumn(name, Float, len(values))
	for i, v := range values {
		c.SetFloat(i, v)
	}
	return c
}

// NewIntColumn builds an Int column where every value is present.
func NewIntColumn(name string, values []int64) *Column {
	c := NewColumn(name, Int, len(values))
	for i, v := range values {
		c.SetInt(i, v)
	}
	return c
}

// NewTimeColumn builds a Time column. Zero times become null.
func NewTimeColumn(name string, values []time.Time) *Column {
	c := NewColumn(name, Time, len(values))
	for i, v := range values {
		c.SetTime(i, v)
	}
	return c
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Kind returns the column kind
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells
func (c *Column) Len() int { return len(c.valid) }

// IsNull reports whether cell i is null
func (c *Column) IsNull(i int) bool { return !c.valid[i] }

// NullCount returns the number of null cells
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// SetNull clears cell i
func (c *Column) SetNull(i int) {
	c.valid[i] = false
}

// SetString stores a string cell. It panics on non-String columns.
func (c *Column) SetString(i int, v string) {
	if c.kind != String {
		panic(fmt.Sprintf("frame: SetString on %s column %q", c.kind, c.name))
	}
	c.strs[i] = v
	c.valid[i] = true
}

// SetInt stores an integer cell. Float columns store it converted.
func (c *Column) SetInt(i int, v int64) {
	if c.kind == Float {
		c.SetFloat(i, float64(v))
		return
	}
	if c.kind != Int {
		panic(fmt.Sprintf("frame: SetInt on %s column %q", c.kind, c.name))
	}
	c.ints[i] = v
	c.valid[i] = true
}

// SetFloat stores a numeric cell; NaN stores null. Int columns truncate v toward zero.
// It panics on non-numeric columns.
func (c *Column) SetFloat(i int, v float64) {
	if !c.kind.IsNumeric() {
		panic(fmt.Sprintf("frame: SetFloat on %s column %q", c.kind, c.name))
	}
	if math.IsNaN(v) {
		c.valid[i] = false
		return
	}
	if c.kind == Int {
		c.ints[i] = int64(v)
	} else {
		c.nums[i] = v
	}
	c.valid[i] = true
}

// SetTime stores a temporal cell; the zero time stores null.
// Period columns keep only year and month.
func (c *Column) SetTime(i int, v time.Time) {
	if c.kind != Time && c.kind != Period {
		panic(fmt.Sprintf("frame: SetTime on %s column %q", c.kind, c.name))
	}
	if v.IsZero() {
		c.valid[i] = false
		return
	}
	if c.kind == Period {
		v = time.Date(v.Year(), v.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	c.times[i] = v
	c.valid[i] = true
}

// Float returns the numeric value of cell i. ok is false for null cells and non-numeric columns.
func (c *Column) Float(i int) (v float64, ok bool) {
	if !c.kind.IsNumeric() || !c.valid[i] {
		return math.NaN(), false
	}
	if c.kind == Int {
		return float64(c.ints[i]), true
	}
	return c.nums[i], true
}

// Int returns the exact value of an Int cell. ok is false for null cells and other kinds.
func (c *Column) Int(i int) (v int64, ok bool) {
	if c.kind != Int || !c.valid[i] {
		return 0, false
	}
	return c.ints[i], true
}

// Time returns the temporal value of cell i.
func (c *Column) Time(i int) (time.Time, bool) {
	if (c.kind != Time && c.kind != Period) || !c.valid[i] {
		return time.Time{}, false
	}
	return c.times[i], true
}

// Floats returns a copy of the numeric cells with NaN for nulls.
func (c *Column) Floats() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i], _ = c.Float(i)
	}
	return out
}

// Format renders cell i as text. Null cells render as the empty string.
func (c *Column) Format(i int) string {
	if !c.valid[i] {
		return ""
	}
	switch c.kind {
	case String:
		return c.strs[i]
	case Int:
		return strconv.FormatInt(c.ints[i], 10)
	case Float:
		return strconv.FormatFloat(c.nums[i], 'f', -1, 64)
	case Time:
		return c.times[i].Format(TimeLayout)
	case Period:
		return c.times[i].Format(PeriodLayout)
	}
	return ""
}

// Clone returns a deep copy of the column, optionally under a new name.
func (c *Column) Clone(name string) *Column {
	if name == "" {
		name = c.name
	}
	out := &Column{name: name, kind: c.kind, valid: append([]bool(nil), c.valid...)}
	if c.strs != nil {
		out.strs = append([]string(nil), c.strs...)
	}
	if c.ints != nil {
		out.ints = append([]int64(nil), c.ints...)
	}
	if c.nums != nil {
		out.nums = append([]float64(nil), c.nums...)
	}
	if c.times != nil {
		out.times = append([]time.Time(nil), c.times...)
	}
	return out
}

// take copies the given rows, in order, into a new column.
func (c *Column) take(rows []int) *Column {
	out := NewColumn(c.name, c.kind, len(rows))
	for j, i := range rows {
		out.valid[j] = c.valid[i]
		switch c.kind {
		case String:
			out.strs[j] = c.strs[i]
		case Int:
			out.ints[j] = c.ints[i]
		case Float:
			out.nums[j] = c.nums[i]
		case Time, Period:
			out.times[j] = c.times[i]
		}
	}
	return out
}
