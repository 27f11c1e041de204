// Package file implements local filesystem data sources rooted at an explicit
// base data directory.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vlingest/internal/datasource"
)

var _ datasource.Named = (*Local)(nil)

// Local opens one file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Name returns the base name of the bound path.
func (l *Local) Name() string { return filepath.Base(l.path) }

// Open opens the file for reading. A canceled context is reported without
// touching the filesystem. Filesystem errors are wrapped with the path and
// still match os.ErrNotExist and friends through errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
