package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// PostgresProvider reads catalog metadata from information_schema over a pgx
// connection.
type PostgresProvider struct {
	conn *pgx.Conn
}

// NewPostgres wraps an established pgx connection.
func NewPostgres(conn *pgx.Conn) *PostgresProvider {
	return &PostgresProvider{conn: conn}
}

// ConnectPostgres establishes a connection and returns a provider for it.
func ConnectPostgres(ctx context.Context, connString string) (*PostgresProvider, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	return NewPostgres(conn), nil
}

// Close closes the underlying connection.
func (p *PostgresProvider) Close(ctx context.Context) error {
	return p.conn.Close(ctx)
}

func (p *PostgresProvider) ListColumns(ctx context.Context, schema, table string) ([]Column, error) {
	const q = `
		SELECT column_name, data_type, column_default, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`

	rows, err := p.conn.Query(ctx, q, fold(schema), fold(table))
	if err != nil {
		return nil, fmt.Errorf("list columns for %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			col      Column
			def      *string
			nullable string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &def, &nullable); err != nil {
			return nil, fmt.Errorf("scan column for %s.%s: %w", schema, table, err)
		}
		col.Default = def
		col.Nullable = strings.EqualFold(nullable, "YES")
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list columns for %s.%s: %w", schema, table, err)
	}
	return cols, nil
}

func (p *PostgresProvider) IsPrimaryKey(ctx context.Context, schema, table, column string) (bool, error) {
	return p.inConstraint(ctx, schema, table, column, []string{"PRIMARY KEY"})
}

func (p *PostgresProvider) IsKeyed(ctx context.Context, schema, table, column string) (bool, error) {
	return p.inConstraint(ctx, schema, table, column, []string{"PRIMARY KEY", "UNIQUE"})
}

func (p *PostgresProvider) inConstraint(ctx context.Context, schema, table, column string, types []string) (bool, error) {
	const q = `
		SELECT 1
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.table_constraints tc
			ON kcu.constraint_schema = tc.constraint_schema
			AND kcu.constraint_name = tc.constraint_name
		WHERE kcu.table_schema = $1
			AND kcu.table_name = $2
			AND kcu.column_name = $3
			AND tc.constraint_type = ANY($4)
		LIMIT 1`

	var one int
	err := p.conn.QueryRow(ctx, q, fold(schema), fold(table), fold(column), types).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("constraint check for %s.%s.%s: %w", schema, table, column, err)
	}
	return true, nil
}

func (p *PostgresProvider) TableExists(ctx context.Context, schema, table string) (bool, error) {
	const q = `
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = $1 AND table_name = $2`

	var one int
	err := p.conn.QueryRow(ctx, q, fold(schema), fold(table)).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("table existence check for %s.%s: %w", schema, table, err)
	}
	return true, nil
}

func (p *PostgresProvider) ListTables(ctx context.Context, schema string) ([]string, error) {
	const q = `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := p.conn.Query(ctx, q, fold(schema))
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

// fold lower-cases identifiers: information_schema stores unquoted Postgres
// identifiers in lower case, while callers typically pass them upper-cased.
func fold(ident string) string {
	return strings.ToLower(ident)
}
