// Package table holds the in-memory columnar representation that the
// generator/modifier/executor pipeline reads and writes. A Table is a set
// of equal-length Columns; every generator produces a whole Column at once
// (spec §9 "Vectorized generation"), never a single cell.
package table

import (
	"fmt"
	"math"
	"time"
)

// Column is a single named vector of values. Exactly one of the typed
// slices is populated, selected by Kind; the others are nil. A nil element
// at index i (tracked in Null) means the column's value at i is SQL NULL.
type Column struct {
	Name string
	Kind ValueKind

	Ints    []int64
	Floats  []float64
	Strings []string
	Bools   []bool
	Times   []time.Time

	Null []bool // len == row count; true marks the row's value as NULL
}

// ValueKind names the physical storage of a Column, independent of the
// specification's LogicalType (a "date" logical column still stores in
// Times).
type ValueKind int

const (
	KindInt ValueKind = iota
	KindFloat
	KindString
	KindBool
	KindTime
)

// NewColumn allocates a Column of the given kind with n rows, all NULL.
func NewColumn(name string, kind ValueKind, n int) *Column {
	c := &Column{Name: name, Kind: kind, Null: make([]bool, n)}
	switch kind {
	case KindInt:
		c.Ints = make([]int64, n)
	case KindFloat:
		c.Floats = make([]float64, n)
	case KindString:
		c.Strings = make([]string, n)
	case KindBool:
		c.Bools = make([]bool, n)
	case KindTime:
		c.Times = make([]time.Time, n)
	}
	for i := range c.Null {
		c.Null[i] = true
	}
	return c
}

// Len returns the column's row count.
func (c *Column) Len() int {
	return len(c.Null)
}

// SetInt writes a non-null int value at row i.
func (c *Column) SetInt(i int, v int64) {
	c.Ints[i] = v
	c.Null[i] = false
}

// SetFloat writes a non-null float value at row i.
func (c *Column) SetFloat(i int, v float64) {
	c.Floats[i] = v
	c.Null[i] = false
}

// SetString writes a non-null string value at row i.
func (c *Column) SetString(i int, v string) {
	c.Strings[i] = v
	c.Null[i] = false
}

// SetBool writes a non-null bool value at row i.
func (c *Column) SetBool(i int, v bool) {
	c.Bools[i] = v
	c.Null[i] = false
}

// SetTime writes a non-null time value at row i.
func (c *Column) SetTime(i int, v time.Time) {
	c.Times[i] = v
	c.Null[i] = false
}

// At returns the value at row i as an any, or nil if the row is NULL.
func (c *Column) At(i int) any {
	if c.Null[i] {
		return nil
	}
	switch c.Kind {
	case KindInt:
		return c.Ints[i]
	case KindFloat:
		return c.Floats[i]
	case KindString:
		return c.Strings[i]
	case KindBool:
		return c.Bools[i]
	case KindTime:
		return c.Times[i]
	default:
		return nil
	}
}

// CastToInt rounds a KindFloat column to the nearest integer and converts
// its physical storage to KindInt in place. It is a no-op on a column that
// is already KindInt, and panics on any other Kind: only a generator that
// drew continuous values (distribution, expression) should ever be cast
// this way, and the caller decides that from the column's declared
// LogicalType.
func (c *Column) CastToInt() {
	switch c.Kind {
	case KindInt:
		return
	case KindFloat:
		ints := make([]int64, len(c.Floats))
		for i, v := range c.Floats {
			if !c.Null[i] {
				ints[i] = int64(math.Round(v))
			}
		}
		c.Floats = nil
		c.Ints = ints
		c.Kind = KindInt
	default:
		panic(fmt.Sprintf("table: CastToInt called on column %q with kind %v", c.Name, c.Kind))
	}
}

// Table is one materialized node: a name, a primary key column name, and
// an ordered list of equal-length columns.
type Table struct {
	Name string
	PK   string
	Rows int

	columns      []*Column
	columnsByKey map[string]*Column
}

// NewTable allocates an empty Table with the given row count.
func NewTable(name, pk string, rows int) *Table {
	return &Table{Name: name, PK: pk, Rows: rows, columnsByKey: make(map[string]*Column)}
}

// AddColumn appends a new Column of rows length t.Rows, registers it by
// name, and returns it for the caller to populate.
func (t *Table) AddColumn(name string, kind ValueKind) *Column {
	c := NewColumn(name, kind, t.Rows)
	t.columns = append(t.columns, c)
	t.columnsByKey[name] = c
	return c
}

// Adopt registers a Column built elsewhere (e.g. by a generator) as one of
// the table's columns, in declaration order.
func (t *Table) Adopt(c *Column) {
	t.columns = append(t.columns, c)
	t.columnsByKey[c.Name] = c
}

// Column returns the named column, or nil if it doesn't exist.
func (t *Table) Column(name string) *Column {
	return t.columnsByKey[name]
}

// Columns returns the table's columns in declaration order.
func (t *Table) Columns() []*Column {
	return t.columns
}

// MustColumn returns the named column or panics; used internally once a
// column's existence has already been established by preflight validation.
func (t *Table) MustColumn(name string) *Column {
	c := t.Column(name)
	if c == nil {
		panic(fmt.Sprintf("table: column %q not found on table %q", name, t.Name))
	}
	return c
}
