// Package postgres reads inspection and goal tables from Postgres using
// pgx v5.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"vistoria/internal/storage"
	"vistoria/pkg/records"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository is a Postgres-backed storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, pool.Close, nil
}

// TableExists implements storage.Repository.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, pgFQN(table)).Scan(&ok); err != nil {
		return false, fmt.Errorf("lookup %s: %w", table, err)
	}
	return ok, nil
}

// Distinct implements storage.Repository.
func (r *Repository) Distinct(ctx context.Context, table, column string) ([]string, error) {
	rows, err := r.pool.Query(ctx, distinctSQL(table, column))
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
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	var out []records.Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("values: %w", err)
		}
		out = append(out, storage.ToRecord(cols, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}
	return out, nil
}

func distinctSQL(table, column string) string {
	c := pgIdent(column)
	return fmt.Sprintf(`SELECT DISTINCT %s::text FROM %s WHERE %s IS NOT NULL ORDER BY 1`, c, pgFQN(table), c)
}

func selectSQL(table, column, value string) (string, []any) {
	q := "SELECT * FROM " + pgFQN(table)
	if column == "" {
		return q, nil
	}
	return q + " WHERE " + pgIdent(column) + "::text = $1", []any{value}
}

// pgIdent quotes an identifier for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.vistorias" to
// "public"."vistorias".
func pgFQN(name string) string {
	parts := storage.SplitName(name)
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}
