// Package sqlite reads inspection and goal tables from a SQLite file using
// database/sql and the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"vistoria/internal/storage"
	"vistoria/pkg/records"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:painel.db?mode=ro"
	//   "painel.db"
	DSN string
}

// Repository is a SQLite-backed storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// TableExists implements storage.Repository. A schema prefix such as
// "main." is ignored.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	parts := storage.SplitName(table)
	if len(parts) == 0 {
		return false, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`,
		parts[len(parts)-1]).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: lookup %s: %w", table, err)
	}
	return n > 0, nil
}

// Distinct implements storage.Repository.
func (r *Repository) Distinct(ctx context.Context, table, column string) ([]string, error) {
	c := quoteIdent(column)
	q := fmt.Sprintf("SELECT DISTINCT CAST(%s AS TEXT) FROM %s WHERE %s IS NOT NULL ORDER BY 1", c, quoteFQN(table), c)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query %s: %w", table, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Rows implements storage.Repository.
func (r *Repository) Rows(ctx context.Context, table, column, value string) ([]records.Record, error) {
	q := "SELECT * FROM " + quoteFQN(table)
	var args []any
	if column != "" {
		q += " WHERE CAST(" + quoteIdent(column) + " AS TEXT) = ?"
		args = append(args, value)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query %s: %w", table, err)
	}
	return storage.ScanRows(rows)
}

// Exec runs a statement; used to seed fixtures.
func (r *Repository) Exec(ctx context.Context, stmt string, args ...any) error {
	_, err := r.db.ExecContext(ctx, stmt, args...)
	return err
}

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func quoteFQN(name string) string {
	parts := storage.SplitName(name)
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}
