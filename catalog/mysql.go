package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLProvider reads catalog metadata from information_schema over a
// database/sql connection. The schema argument maps to the MySQL database
// name.
type MySQLProvider struct {
	db *sql.DB
}

// NewMySQL wraps an established database/sql handle.
func NewMySQL(db *sql.DB) *MySQLProvider {
	return &MySQLProvider{db: db}
}

// ConnectMySQL opens a connection and returns a provider for it.
func ConnectMySQL(dsn string) (*MySQLProvider, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql connect: %w", err)
	}
	return NewMySQL(db), nil
}

// Close closes the underlying connection pool.
func (p *MySQLProvider) Close() error {
	return p.db.Close()
}

func (p *MySQLProvider) ListColumns(ctx context.Context, schema, table string) ([]Column, error) {
	const q = `
		SELECT column_name, column_type, column_default, is_nullable
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`

	rows, err := p.db.QueryContext(ctx, q, schema, table)
	if err != nil {
		return nil, fmt.Errorf("list columns for %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			col      Column
			def      sql.NullString
			nullable string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &def, &nullable); err != nil {
			return nil, fmt.Errorf("scan column for %s.%s: %w", schema, table, err)
		}
		if def.Valid {
			v := def.String
			col.Default = &v
		}
		col.Nullable = strings.EqualFold(nullable, "YES")
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list columns for %s.%s: %w", schema, table, err)
	}
	return cols, nil
}

func (p *MySQLProvider) IsPrimaryKey(ctx context.Context, schema, table, column string) (bool, error) {
	return p.inConstraint(ctx, schema, table, column, "'PRIMARY KEY'")
}

func (p *MySQLProvider) IsKeyed(ctx context.Context, schema, table, column string) (bool, error) {
	return p.inConstraint(ctx, schema, table, column, "'PRIMARY KEY', 'UNIQUE'")
}

func (p *MySQLProvider) inConstraint(ctx context.Context, schema, table, column, types string) (bool, error) {
	q := fmt.Sprintf(`
		SELECT 1
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.table_constraints tc
			ON kcu.constraint_schema = tc.constraint_schema
			AND kcu.constraint_name = tc.constraint_name
			AND kcu.table_name = tc.table_name
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.column_name = ?
			AND tc.constraint_type IN (%s)
		LIMIT 1`, types)

	var one int
	err := p.db.QueryRowContext(ctx, q, schema, table, column).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("constraint check for %s.%s.%s: %w", schema, table, column, err)
	}
	return true, nil
}

func (p *MySQLProvider) TableExists(ctx context.Context, schema, table string) (bool, error) {
	const q = `
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?`

	var one int
	err := p.db.QueryRowContext(ctx, q, schema, table).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("table existence check for %s.%s: %w", schema, table, err)
	}
	return true, nil
}

func (p *MySQLProvider) ListTables(ctx context.Context, schema string) ([]string, error) {
	const q = `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := p.db.QueryContext(ctx, q, schema)
	if err != nil {
		return nil, fmt.Errorf("list tables for %s: %w", schema, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name for %s: %w", schema, err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
