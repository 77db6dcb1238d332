package dataset

import (
	"fmt"
	"math"
	"strconv"

	"mlpipe/domain/core"
)

// ColumnKind classifies how a column's cells are stored
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"     // float64, NaN = missing
	KindBoolean     ColumnKind = "boolean"     // 0/1 stored as float64, NaN = missing
	KindCategorical ColumnKind = "categorical" // string, "" = missing
)

// Column is a single named vector of cells
type Column struct {
	Name string
	Kind ColumnKind
	Num  []float64 // numeric and boolean columns
	Str  []string  // categorical columns
}

// NewNumericColumn builds a numeric column
func NewNumericColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindNumeric, Num: values}
}

// NewBooleanColumn builds a boolean column from bools
func NewBooleanColumn(name string, values []bool) *Column {
	num := make([]float64, len(values))
	for i, v := range values {
		if v {
			num[i] = 1
		}
	}
	return &Column{Name: name, Kind: KindBoolean, Num: num}
}

// NewCategoricalColumn builds a categorical column
func NewCategoricalColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindCategorical, Str: values}
}

// Len returns the number of cells
func (c *Column) Len() int {
	if c.Kind == KindCategorical {
		return len(c.Str)
	}
	return len(c.Num)
}

// IsMissing reports whether row i holds no value
func (c *Column) IsMissing(i int) bool {
	if c.Kind == KindCategorical {
		return c.Str[i] == ""
	}
	return math.IsNaN(c.Num[i])
}

// MissingCount counts missing cells
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// IsNumeric is true for numeric and boolean columns
func (c *Column) IsNumeric() bool {
	return c.Kind == KindNumeric || c.Kind == KindBoolean
}

// Present returns the non-missing numeric cells
func (c *Column) Present() []float64 {
	out := make([]float64, 0, len(c.Num))
	for _, v := range c.Num {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Format renders cell i the way it is written to CSV
func (c *Column) Format(i int) string {
	switch c.Kind {
	case KindCategorical:
		return c.Str[i]
	case KindBoolean:
		if math.IsNaN(c.Num[i]) {
			return ""
		}
		if c.Num[i] != 0 {
			return "True"
		}
		return "False"
	default:
		if math.IsNaN(c.Num[i]) {
			return ""
		}
		return strconv.FormatFloat(c.Num[i], 'g', -1, 64)
	}
}

// Clone deep-copies the column
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Num != nil {
		out.Num = append([]float64(nil), c.Num...)
	}
	if c.Str != nil {
		out.Str = append([]string(nil), c.Str...)
	}
	return out
}

// Table is an ordered set of equally long columns.
// Stage code treats a Table as a value: mutating helpers return new tables.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{index: make(map[string]int), rows: -1}
}

// FromColumns builds a table, validating lengths and unique names
func FromColumns(cols ...*Column) (*Table, error) {
	t := NewTable()
	for _, c := range cols {
		if err := t.Add(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add appends a column, or replaces an existing column with the same name in place
func (t *Table) Add(c *Column) error {
	if c.Name == "" {
		return core.NewValidationError("column", "name cannot be empty")
	}
	if t.rows >= 0 && c.Len() != t.rows {
		return fmt.Errorf("column %s has %d rows, table has %d", c.Name, c.Len(), t.rows)
	}
	if t.rows < 0 {
		t.rows = c.Len()
	}
	if i, ok := t.index[c.Name]; ok {
		t.columns[i] = c
		return nil
	}
	t.index[c.Name] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t.rows < 0 {
		return 0
	}
	return t.rows
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.columns)
}

// Names returns column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return t.columns[i], nil
}

// Numeric returns the numeric cells of a numeric or boolean column
func (t *Table) Numeric(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if !c.IsNumeric() {
		return nil, fmt.Errorf("%w: %s is %s", core.ErrColumnType, name, c.Kind)
	}
	return c.Num, nil
}

// Clone deep-copies the table
func (t *Table) Clone() *Table {
	out := NewTable()
	for _, c := range t.columns {
		_ = out.Add(c.Clone())
	}
	if len(t.columns) == 0 {
		out.rows = t.rows
	}
	return out
}

// Drop returns a copy without the named columns; unknown names are ignored
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := NewTable()
	for _, c := range t.columns {
		if skip[c.Name] {
			continue
		}
		_ = out.Add(c.Clone())
	}
	if out.Width() == 0 {
		out.rows = t.rows
	}
	return out
}

// Rows returns a copy holding only the given row indices, in that order
func (t *Table) Rows(idx []int) *Table {
	out := NewTable()
	for _, c := range t.columns {
		nc := &Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == KindCategorical {
			nc.Str = make([]string, len(idx))
			for j, i := range idx {
				nc.Str[j] = c.Str[i]
			}
		} else {
			nc.Num = make([]float64, len(idx))
			for j, i := range idx {
				nc.Num[j] = c.Num[i]
			}
		}
		_ = out.Add(nc)
	}
	return out
}

// Row renders row i as strings, for writers
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.columns))
	for j, c := range t.columns {
		out[j] = c.Format(i)
	}
	return out
}
