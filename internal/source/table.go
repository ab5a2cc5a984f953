// Package source provides the tabular inputs the metadata engine consumes:
// in-memory column samples built from CSV files or from a live database.
package source

import "fmt"

// Column is one named column with its sampled values. Empty strings are
// treated as nulls downstream.
type Column struct {
	Name   string
	Values []string
}

// Table is an in-memory sample of named columns. Column order is the
// original order and is preserved all the way through serialization.
// The engine only scans a Table during inference and never retains it.
type Table struct {
	Name    string
	Columns []Column
}

// New builds a table from ordered columns.
func New(name string, columns ...Column) *Table {
	return &Table{Name: name, Columns: columns}
}

// AddColumn appends a column, rejecting duplicate names.
func (t *Table) AddColumn(name string, values []string) error {
	for _, c := range t.Columns {
		if c.Name == name {
			return fmt.Errorf("table %q already has a column %q", t.Name, name)
		}
	}
	t.Columns = append(t.Columns, Column{Name: name, Values: values})
	return nil
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in original order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Rows returns the number of sampled rows (the longest column).
func (t *Table) Rows() int {
	rows := 0
	for _, c := range t.Columns {
		if len(c.Values) > rows {
			rows = len(c.Values)
		}
	}
	return rows
}
