package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteProvider reads catalog metadata through PRAGMA statements. SQLite has
// no schema namespaces, so the schema argument is ignored everywhere except in
// error text.
type SQLiteProvider struct {
	db *sql.DB
}

// NewSQLite wraps an established database/sql handle.
func NewSQLite(db *sql.DB) *SQLiteProvider {
	return &SQLiteProvider{db: db}
}

// ConnectSQLite opens the database file at path. Use ":memory:" for an
// in-memory database.
func ConnectSQLite(path string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite connect: %w", err)
	}
	return NewSQLite(db), nil
}

// Close closes the underlying connection pool.
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

type sqlitePragmaColumn struct {
	name     string
	dataType string
	notNull  int
	def      sql.NullString
	pk       int
}

func (p *SQLiteProvider) tableInfo(ctx context.Context, table string) ([]sqlitePragmaColumn, error) {
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("table_info for %s: %w", table, err)
	}
	defer rows.Close()

	var cols []sqlitePragmaColumn
	for rows.Next() {
		var (
			cid int
			c   sqlitePragmaColumn
		)
		if err := rows.Scan(&cid, &c.name, &c.dataType, &c.notNull, &c.def, &c.pk); err != nil {
			return nil, fmt.Errorf("scan table_info for %s: %w", table, err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (p *SQLiteProvider) ListColumns(ctx context.Context, _, table string) ([]Column, error) {
	info, err := p.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	var cols []Column
	for _, c := range info {
		col := Column{Name: c.name, DataType: c.dataType, Nullable: c.notNull == 0}
		if c.def.Valid {
			v := c.def.String
			col.Default = &v
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (p *SQLiteProvider) IsPrimaryKey(ctx context.Context, _, table, column string) (bool, error) {
	info, err := p.tableInfo(ctx, table)
	if err != nil {
		return false, err
	}
	for _, c := range info {
		if strings.EqualFold(c.name, column) {
			return c.pk > 0, nil
		}
	}
	return false, nil
}

func (p *SQLiteProvider) IsKeyed(ctx context.Context, schema, table, column string) (bool, error) {
	pk, err := p.IsPrimaryKey(ctx, schema, table, column)
	if err != nil || pk {
		return pk, err
	}

	// Unique indexes with origin "u" back declared UNIQUE constraints.
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%q)", table))
	if err != nil {
		return false, fmt.Errorf("index_list for %s: %w", table, err)
	}
	defer rows.Close()

	var uniqueIdx []string
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return false, fmt.Errorf("scan index_list for %s: %w", table, err)
		}
		if unique == 1 && origin != "pk" {
			uniqueIdx = append(uniqueIdx, name)
		}
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	for _, idx := range uniqueIdx {
		ok, err := p.indexHasColumn(ctx, idx, column)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (p *SQLiteProvider) indexHasColumn(ctx context.Context, index, column string) (bool, error) {
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%q)", index))
	if err != nil {
		return false, fmt.Errorf("index_info for %s: %w", index, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seqno int
			cid   int
			name  sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return false, fmt.Errorf("scan index_info for %s: %w", index, err)
		}
		if name.Valid && strings.EqualFold(name.String, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (p *SQLiteProvider) TableExists(ctx context.Context, _, table string) (bool, error) {
	const q = `SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`

	var one int
	err := p.db.QueryRowContext(ctx, q, table).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("table existence check for %s: %w", table, err)
	}
	return true, nil
}

func (p *SQLiteProvider) ListTables(ctx context.Context, _ string) ([]string, error) {
	const q = `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
