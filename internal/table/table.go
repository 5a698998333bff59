// Package table holds the in-memory address table that flows through the
// geocoding pipeline, plus its CSV/XLSX readers and CSV writer.
package table

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
)

// MissingText is the text form of the missing-value marker.
const MissingText = ""

// Kind identifies what a Value holds.
type Kind uint8

const (
	// Null is the missing-value marker. It is the zero Kind.
	Null Kind = iota
	Text
	Number
	Object
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Text:
		return "text"
	case Number:
		return "number"
	case Object:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single cell. The zero Value is the missing-value marker.
type Value struct {
	kind Kind
	text string
	num  float64
	obj  fmt.Stringer
}

// Missing returns the missing-value marker.
func Missing() Value { return Value{} }

// TextValue returns a text cell.
func TextValue(s string) Value { return Value{kind: Text, text: s} }

// NumberValue returns a numeric cell.
func NumberValue(f float64) Value { return Value{kind: Number, num: f} }

// ObjectValue returns a cell holding a structured value. A nil object yields
// the missing-value marker.
func ObjectValue(o fmt.Stringer) Value {
	if o == nil {
		return Missing()
	}
	return Value{kind: Object, obj: o}
}

// Kind returns the kind of value held.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing-value marker.
func (v Value) IsMissing() bool { return v.kind == Null }

// Number returns the numeric content and whether v is a Number.
func (v Value) Number() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// Object returns the structured content, or nil if v is not an Object.
func (v Value) Object() fmt.Stringer {
	if v.kind != Object {
		return nil
	}
	return v.obj
}

// String returns the text form used for display and CSV export.
func (v Value) String() string {
	switch v.kind {
	case Text:
		return v.text
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Object:
		return v.obj.String()
	default:
		return MissingText
	}
}

// Table is an ordered set of named columns over a list of rows.
// Stages add or replace columns; rows are never dropped or reordered.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New creates an empty table with the given column names.
func New(columns []string) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if err := t.addColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) addColumn(name string) error {
	if name == "" {
		return eris.New("table: empty column name")
	}
	if _, ok := t.index[name]; ok {
		return eris.Errorf("table: duplicate column %q", name)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	return nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Index returns the position of a column, or -1.
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// AppendRow adds a row. Short rows are padded with missing values.
func (t *Table) AppendRow(vals []Value) error {
	if len(vals) > len(t.columns) {
		return eris.Errorf("table: row has %d fields, table has %d columns", len(vals), len(t.columns))
	}
	row := make([]Value, len(t.columns))
	copy(row, vals)
	t.rows = append(t.rows, row)
	return nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.columns))
	copy(out, t.rows[i])
	return out
}

// Get returns the cell at row i of the named column, or the missing-value
// marker if the column does not exist.
func (t *Table) Get(i int, name string) Value {
	c, ok := t.index[name]
	if !ok {
		return Missing()
	}
	return t.rows[i][c]
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]Value, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, eris.Errorf("table: unknown column %q", name)
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out, nil
}

// SetColumn replaces the named column, or appends it if it does not exist.
// vals must have exactly one value per row.
func (t *Table) SetColumn(name string, vals []Value) error {
	if len(vals) != len(t.rows) {
		return eris.Errorf("table: column %q has %d values, table has %d rows", name, len(vals), len(t.rows))
	}
	c, ok := t.index[name]
	if !ok {
		if err := t.addColumn(name); err != nil {
			return err
		}
		c = len(t.columns) - 1
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], Value{})
		}
	}
	for i := range t.rows {
		t.rows[i][c] = vals[i]
	}
	return nil
}

// Head returns a copy of the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) || n < 0 {
		n = len(t.rows)
	}
	out := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.index)),
		rows:    make([][]Value, n),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	for i := 0; i < n; i++ {
		out.rows[i] = t.Row(i)
	}
	return out
}

// Clone returns a deep copy of the table structure. Object values are shared.
func (t *Table) Clone() *Table {
	return t.Head(len(t.rows))
}
