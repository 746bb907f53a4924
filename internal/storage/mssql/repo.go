// Package mssql reads inspection and goal tables from Microsoft SQL Server
// through go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"vistoria/internal/storage"
	"vistoria/pkg/records"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// Repository is an MSSQL-backed storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// TableExists implements storage.Repository.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT CASE WHEN OBJECT_ID(@p1) IS NULL THEN 0 ELSE 1 END`, msFQN(table)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", table, err)
	}
	return n == 1, nil
}

// Distinct implements storage.Repository.
func (r *Repository) Distinct(ctx context.Context, table, column string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, distinctSQL(table, column))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Rows implements storage.Repository.
func (r *Repository) Rows(ctx context.Context, table, column, value string) ([]records.Record, error) {
	q, args := selectSQL(table, column, value)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return storage.ScanRows(rows)
}

func asText(col string) string { return "CAST(" + msIdent(col) + " AS NVARCHAR(4000))" }

func distinctSQL(table, column string) string {
	return fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY 1",
		asText(column), msFQN(table), msIdent(column))
}

func selectSQL(table, column, value string) (string, []any) {
	q := "SELECT * FROM " + msFQN(table)
	if column == "" {
		return q, nil
	}
	return q + " WHERE " + asText(column) + " = @p1", []any{value}
}

// msIdent quotes an identifier for SQL Server.
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes a possibly schema-qualified name like "dbo.vistorias".
func msFQN(name string) string {
	parts := storage.SplitName(name)
	for i, p := range parts {
		parts[i] = msIdent(p)
	}
	return strings.Join(parts, ".")
}
