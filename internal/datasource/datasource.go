// Package datasource defines how the engine obtains raw sheets. A Fetcher
// enumerates sources (one monthly sheet each) and returns their inspection
// rows and optional goal rows; folder, HTTP and SQL implementations live in
// subpackages and in internal/storage.
package datasource

import (
	"context"
	"fmt"
	"io"
	"time"

	"vistoria/pkg/records"
)

// Source opens a byte stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// SourceInfo describes one listed source.
type SourceInfo struct {
	// ID is stable for the lifetime of the source and is what the fetch
	// methods accept.
	ID string
	// Title is the human name, e.g. "VISTORIAS 05/2024". Goal sheets
	// without month columns fall back to a MM/YYYY pattern in it.
	Title string
	// ModTime is zero when the backend cannot tell.
	ModTime time.Time
}

// Fetcher is the contract between the engine and sheet storage.
type Fetcher interface {
	// List returns the available sources, most recently modified first when
	// the backend knows modification times.
	List(ctx context.Context) ([]SourceInfo, error)

	// FetchRecords returns the raw inspection rows of a source.
	FetchRecords(ctx context.Context, id string) ([]records.Record, error)

	// FetchGoals returns the raw goal rows of a source, or nil with a nil
	// error when the source has no goal table.
	FetchGoals(ctx context.Context, id string) ([]records.Record, error)
}

// SourceUnavailable reports that a source could not be fetched or read.
// It is fatal for that source only.
type SourceUnavailable struct {
	Source string
	Err    error
}

func (e *SourceUnavailable) Error() string {
	return fmt.Sprintf("source %q unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailable) Unwrap() error { return e.Err }

// Unavailable wraps err as a *SourceUnavailable for id. A nil err stays nil
// and an error that already is a *SourceUnavailable is returned unchanged.
func Unavailable(id string, err error) error {
	if err == nil {
		return nil
	}
	if su, ok := err.(*SourceUnavailable); ok {
		return su
	}
	return &SourceUnavailable{Source: id, Err: err}
}
