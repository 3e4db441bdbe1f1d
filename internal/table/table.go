// Package table holds the small immutable column/row table that flows
// between pipeline stages. Every operation returns a new table.
package table

import (
	"sort"
	"strconv"

	"macroagg/internal/etlerr"
)

// Kind is the dynamic type of a Value.
type Kind uint8

const (
	Null Kind = iota
	String
	Float
)

// Value is a single null-aware cell.
type Value struct {
	kind Kind
	s    string
	f    float64
}

func NullValue() Value       { return Value{} }
func Str(s string) Value     { return Value{kind: String, s: s} }
func Num(f float64) Value    { return Value{kind: Float, f: f} }
func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

// Float returns the numeric payload; ok is false for non-Float values.
func (v Value) Float() (float64, bool) {
	if v.kind != Float {
		return 0, false
	}
	return v.f, true
}

// Text returns the string payload; ok is false for non-String values.
func (v Value) Text() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.s, true
}

// String renders the value the way the delimited-text sink writes it.
func (v Value) String() string {
	switch v.kind {
	case String:
		return v.s
	case Float:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return ""
	}
}

// Table is a rectangular set of named columns.
type Table struct {
	columns []string
	rows    [][]Value
}

// New validates the shape and copies its inputs.
func New(columns []string, rows [][]Value) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return nil, etlerr.NewFormatError("duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	cp := make([][]Value, len(rows))
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, etlerr.NewFormatError("row %d has %d cells, header has %d columns", i, len(r), len(columns))
		}
		cp[i] = append([]Value(nil), r...)
	}
	return &Table{columns: append([]string(nil), columns...), rows: cp}, nil
}

func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }
func (t *Table) Len() int          { return len(t.rows) }
func (t *Table) Width() int        { return len(t.columns) }

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value { return append([]Value(nil), t.rows[i]...) }

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	for i, c := range t.columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column.
func (t *Table) Column(col string) ([]Value, bool) {
	idx := t.Index(col)
	if idx < 0 {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[idx]
	}
	return out, true
}

// Rename returns a copy with column from renamed to to.
func (t *Table) Rename(from, to string) (*Table, error) {
	idx := t.Index(from)
	if idx < 0 {
		return nil, etlerr.NewFormatError("rename: no column %q", from)
	}
	if from == to {
		return t, nil
	}
	if t.Index(to) >= 0 {
		return nil, etlerr.NewFormatError("rename: column %q already exists", to)
	}
	cols := t.Columns()
	cols[idx] = to
	return &Table{columns: cols, rows: t.rows}, nil
}

// Select projects the table onto cols, in the given order.
func (t *Table) Select(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
		if idx[i] < 0 {
			return nil, etlerr.NewFormatError("select: no column %q", c)
		}
	}
	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		out := make([]Value, len(idx))
		for j, k := range idx {
			out[j] = r[k]
		}
		rows[i] = out
	}
	return New(cols, rows)
}

// SortBy returns a copy ordered by the text form of col. Rows compare
// stably, so equal keys keep their input order.
func (t *Table) SortBy(col string) (*Table, error) {
	idx := t.Index(col)
	if idx < 0 {
		return nil, etlerr.NewFormatError("sort: no column %q", col)
	}
	rows := make([][]Value, len(t.rows))
	copy(rows, t.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][idx].String() < rows[j][idx].String()
	})
	return &Table{columns: t.Columns(), rows: rows}, nil
}

// Records renders every row in text form, without the header.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rec := make([]string, len(r))
		for j, v := range r {
			rec[j] = v.String()
		}
		out[i] = rec
	}
	return out
}
