// Package table holds the in-memory representation of a sheet export and the
// parser that builds it.
package table

// Row maps column names to cell values. Every row of a table carries the same
// column set.
type Row map[string]Value

// Get returns the named cell, or null when the column is absent.
func (r Row) Get(name string) Value {
	if r == nil {
		return Value{}
	}
	return r[name]
}

// Column describes one header entry and the storage type inferred for it.
type Column struct {
	Name string
	Type Kind
}

// Table is an immutable snapshot of the sheet. Callers must treat a Table
// handed out by the dataset cache as read-only; use Clone for a private copy.
type Table struct {
	Columns []Column
	Rows    []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnNames returns the header in sheet order.
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (Column, bool) {
	if t == nil {
		return Column{}, false
	}
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: make([]Column, len(t.Columns)),
		Rows:    make([]Row, len(t.Rows)),
	}
	copy(out.Columns, t.Columns)
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Where returns the rows matching keep, in table order.
func (t *Table) Where(keep func(Row) bool) []Row {
	if t == nil {
		return nil
	}
	out := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}
