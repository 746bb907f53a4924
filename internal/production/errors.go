package production

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRecords is returned when no source produced a normalized record.
	ErrNoRecords = errors.New("no inspection records")
	// ErrNoDates is returned by date-scoped computations when the view has
	// no dated record.
	ErrNoDates = errors.New("no dated inspection records")
)

// SchemaError reports required columns missing from a sheet. It is fatal
// for that source only.
type SchemaError struct {
	Source  string
	Sheet   string
	Missing []string
}

func (e *SchemaError) Error() string {
	where := e.Source
	if e.Sheet != "" {
		where += "/" + e.Sheet
	}
	return fmt.Sprintf("sheet %q is missing required column(s): %s", where, strings.Join(e.Missing, ", "))
}
