package storage

import (
	"context"
	"fmt"
	"strings"

	"vistoria/internal/datasource"
	"vistoria/pkg/records"
)

// Tables names the inspection and goal tables a Fetcher reads.
type Tables struct {
	Records string
	// Goals is optional.
	Goals string
	// SourceColumn partitions both tables into sources. When empty the
	// records table is a single source whose ID is the table name.
	SourceColumn string
}

// Fetcher serves datasource.Fetcher from SQL tables.
type Fetcher struct {
	repo   Repository
	tables Tables
}

var _ datasource.Fetcher = (*Fetcher)(nil)

// NewFetcher returns a Fetcher over repo.
func NewFetcher(repo Repository, t Tables) (*Fetcher, error) {
	if strings.TrimSpace(t.Records) == "" {
		return nil, fmt.Errorf("storage: records table is required")
	}
	return &Fetcher{repo: repo, tables: t}, nil
}

// List returns one source per distinct SourceColumn value, in ascending
// order. Modification times are unknown.
func (f *Fetcher) List(ctx context.Context) ([]datasource.SourceInfo, error) {
	if f.tables.SourceColumn == "" {
		return []datasource.SourceInfo{{ID: f.tables.Records, Title: f.tables.Records}}, nil
	}
	vals, err := f.repo.Distinct(ctx, f.tables.Records, f.tables.SourceColumn)
	if err != nil {
		return nil, fmt.Errorf("list sources in %s: %w", f.tables.Records, err)
	}
	out := make([]datasource.SourceInfo, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, datasource.SourceInfo{ID: v, Title: v})
	}
	return out, nil
}

// FetchRecords returns the inspection rows of source id.
func (f *Fetcher) FetchRecords(ctx context.Context, id string) ([]records.Record, error) {
	rows, err := f.repo.Rows(ctx, f.tables.Records, f.tables.SourceColumn, f.value(id))
	if err != nil {
		return nil, datasource.Unavailable(id, err)
	}
	return rows, nil
}

// FetchGoals returns the goal rows of source id, or nil when no goals table
// is configured, the table does not exist, or it holds no rows for id.
func (f *Fetcher) FetchGoals(ctx context.Context, id string) ([]records.Record, error) {
	if f.tables.Goals == "" {
		return nil, nil
	}
	ok, err := f.repo.TableExists(ctx, f.tables.Goals)
	if err != nil {
		return nil, datasource.Unavailable(id, err)
	}
	if !ok {
		return nil, nil
	}
	rows, err := f.repo.Rows(ctx, f.tables.Goals, f.tables.SourceColumn, f.value(id))
	if err != nil {
		return nil, datasource.Unavailable(id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows, nil
}

func (f *Fetcher) value(id string) string {
	if f.tables.SourceColumn == "" {
		return ""
	}
	return id
}

// SplitName splits a possibly schema-qualified name into its parts, dropping
// empty segments.
func SplitName(name string) []string {
	parts := strings.Split(name, ".")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
