package domain

import (
	"strings"
)

// Table represents an in-memory wide-format survey table: one row per
// participant, one column per item. Cells hold the raw string values as
// they appeared in the source file; numeric interpretation happens at
// the stage that needs it.
type Table struct {
	// Fields is the ordered list of column names.
	Fields []string `json:"fields"`
	// Rows holds the data; every row has len(Fields) cells.
	Rows [][]string `json:"rows"`
	// IDField names the column holding the integer participant id.
	IDField string `json:"id_field"`
}

// NewTable creates a table with the given fields and id column. Rows
// start empty; callers append via AppendRow to keep the width invariant.
func NewTable(fields []string, idField string) *Table {
	return &Table{
		Fields:  append([]string(nil), fields...),
		Rows:    make([][]string, 0),
		IDField: idField,
	}
}

// FieldIndex returns the position of the named field, or -1 if the
// table has no such field.
func (t *Table) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// HasField reports whether the table contains the named field.
func (t *Table) HasField(name string) bool {
	return t.FieldIndex(name) >= 0
}

// AppendRow adds a row to the table. The caller must supply exactly one
// cell per field.
func (t *Table) AppendRow(row []string) {
	t.Rows = append(t.Rows, row)
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumFields returns the number of columns.
func (t *Table) NumFields() int {
	return len(t.Fields)
}

// Clone returns a deep copy of the table. Stage functions operate on
// clones so that inputs are never mutated.
func (t *Table) Clone() *Table {
	clone := &Table{
		Fields:  append([]string(nil), t.Fields...),
		Rows:    make([][]string, len(t.Rows)),
		IDField: t.IDField,
	}
	for i, row := range t.Rows {
		clone.Rows[i] = append([]string(nil), row...)
	}
	return clone
}

// IsMissing reports whether a raw cell value counts as missing data.
// Survey exports leave skipped items empty or whitespace-only.
func IsMissing(cell string) bool {
	return strings.TrimSpace(cell) == ""
}
