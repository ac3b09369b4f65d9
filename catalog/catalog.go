// Package catalog supplies relational catalog metadata to the generator:
// ordered column definitions plus key-constraint membership, backed by the
// target database's dictionary views.
package catalog

import (
	"context"
	"errors"
)

// ErrTableNotFound is returned when the requested table does not exist in the
// target schema.
var ErrTableNotFound = errors.New("table not found")

// Column is one column as described by the catalog. DataType is echoed into
// generated code, never interpreted.
type Column struct {
	Name     string
	DataType string
	Default  *string // nil = no default expression
	Nullable bool
}

// Provider answers catalog queries for one database connection. Providers do
// not retry; connectivity failures propagate to the caller unchanged.
type Provider interface {
	// ListColumns returns the table's columns in catalog ordinal order.
	// The order is semantically significant downstream.
	ListColumns(ctx context.Context, schema, table string) ([]Column, error)

	// IsPrimaryKey reports whether the column is part of the table's
	// primary key constraint.
	IsPrimaryKey(ctx context.Context, schema, table, column string) (bool, error)

	// IsKeyed reports whether the column is part of a primary key or
	// unique constraint.
	IsKeyed(ctx context.Context, schema, table, column string) (bool, error)

	// TableExists reports whether the table exists in the schema.
	TableExists(ctx context.Context, schema, table string) (bool, error)

	// ListTables returns all table names in the schema.
	ListTables(ctx context.Context, schema string) ([]string, error)
}
