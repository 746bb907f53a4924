// Package storage provides a backend-agnostic way to read inspection and goal
// tables out of a SQL database. Concrete backends (postgres, sqlite, mssql)
// register themselves from init; importing internal/storage/all enables all
// of them.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vistoria/pkg/records"
)

// Config selects a backend and how to reach it.
type Config struct {
	// Kind is the registered backend name, e.g. "postgres".
	Kind string
	DSN  string
}

// Repository is the read-side contract every backend implements.
type Repository interface {
	// TableExists reports whether table (optionally schema-qualified) exists.
	TableExists(ctx context.Context, table string) (bool, error)

	// Distinct returns the distinct non-null values of column in table,
	// ascending.
	Distinct(ctx context.Context, table, column string) ([]string, error)

	// Rows returns every row of table as a record keyed by column name. When
	// column is non-empty only rows whose column equals value are returned.
	Rows(ctx context.Context, table, column, value string) ([]records.Record, error)

	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. A later registration for
// the same kind replaces the earlier one.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered backend names, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
