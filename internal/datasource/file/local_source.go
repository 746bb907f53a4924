package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens a single file from disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open returns ctx.Err() when ctx is already done; filesystem errors are
// wrapped with the path and keep errors.Is(err, os.ErrNotExist) working.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
