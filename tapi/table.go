// Package tapi generates table API source from relational catalog metadata
// and a directory of named templates. For each table it assembles a package
// specification and body containing insert, select, update, upsert, delete
// and merge procedures, plus optional per-table views and triggers.
package tapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/tapigen/tapigen/catalog"
)

// TableColumn is one column of a loaded table, with the key and maintenance
// classifications the generators switch on. Names are held in lowercase;
// uppercase renditions are derived at render time.
type TableColumn struct {
	Name       string
	DataType   string
	Default    string
	HasDefault bool
	Nullable   bool

	PK         bool // member of the primary key
	AK         bool // member of a unique constraint, but not of the primary key
	Keyed      bool // PK or AK
	RowVersion bool // matches the configured row-version column name
}

// Table holds a table's columns in catalog (ordinal) order together with the
// derived column groupings used by the fragment and signature builders.
type Table struct {
	Schema  string
	Name    string
	Columns []TableColumn

	// MaxNameLen is the length of the longest column name, used to align
	// parameter declarations.
	MaxNameLen int
}

// LoadTable reads column metadata for schema.table from the catalog provider
// and classifies each column. rowVersionColumn may be empty when the table
// carries no row-version column.
//
// A keyed column that is also the row-version column is treated as a key
// column; the row-version flag still participates in expression and skip
// policy.
func LoadTable(ctx context.Context, prov catalog.Provider, schema, table, rowVersionColumn string) (*Table, error) {
	cols, err := prov.ListColumns(ctx, schema, table)
	if err != nil {
		return nil, fmt.Errorf("load table %s.%s: %w", schema, table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("load table %s.%s: %w", schema, table, catalog.ErrTableNotFound)
	}

	t := &Table{
		Schema: strings.ToLower(schema),
		Name:   strings.ToLower(table),
	}
	rowVersion := strings.ToLower(rowVersionColumn)

	for _, col := range cols {
		name := strings.ToLower(col.Name)
		pk, err := prov.IsPrimaryKey(ctx, schema, table, col.Name)
		if err != nil {
			return nil, fmt.Errorf("classify column %s.%s.%s: %w", schema, table, col.Name, err)
		}
		keyed, err := prov.IsKeyed(ctx, schema, table, col.Name)
		if err != nil {
			return nil, fmt.Errorf("classify column %s.%s.%s: %w", schema, table, col.Name, err)
		}

		tc := TableColumn{
			Name:       name,
			DataType:   col.DataType,
			Nullable:   col.Nullable,
			PK:         pk,
			AK:         keyed && !pk,
			Keyed:      keyed,
			RowVersion: rowVersion != "" && name == rowVersion,
		}
		if col.Default != nil {
			tc.Default = strings.TrimSpace(*col.Default)
			tc.HasDefault = tc.Default != ""
		}
		if len(name) > t.MaxNameLen {
			t.MaxNameLen = len(name)
		}
		t.Columns = append(t.Columns, tc)
	}
	return t, nil
}

// Column returns the named column, matching case-insensitively.
func (t *Table) Column(name string) (TableColumn, bool) {
	name = strings.ToLower(name)
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return TableColumn{}, false
}

// PKColumns returns the primary key column names in catalog order.
func (t *Table) PKColumns() []string {
	return t.selectColumns(func(c TableColumn) bool { return c.PK })
}

// AKColumns returns the alternate (unique, non-PK) key column names.
func (t *Table) AKColumns() []string {
	return t.selectColumns(func(c TableColumn) bool { return c.AK })
}

// InOutColumns returns the keyed columns, the ones passed "in out" so the
// caller both supplies and receives their values.
func (t *Table) InOutColumns() []string {
	return t.selectColumns(func(c TableColumn) bool { return c.Keyed })
}

// OutColumns returns the out-only columns: the row-version column when it is
// not itself keyed.
func (t *Table) OutColumns() []string {
	return t.selectColumns(func(c TableColumn) bool { return c.RowVersion && !c.Keyed })
}

// ReturnColumns returns the in-out columns followed by the out-only columns;
// the column order of RETURNING clauses and their INTO counterparts.
func (t *Table) ReturnColumns() []string {
	return append(t.InOutColumns(), t.OutColumns()...)
}

// RowVersionColumn returns the row-version column name, or "" when the table
// has none.
func (t *Table) RowVersionColumn() string {
	for _, c := range t.Columns {
		if c.RowVersion {
			return c.Name
		}
	}
	return ""
}

func (t *Table) selectColumns(keep func(TableColumn) bool) []string {
	var names []string
	for _, c := range t.Columns {
		if keep(c) {
			names = append(names, c.Name)
		}
	}
	return names
}
