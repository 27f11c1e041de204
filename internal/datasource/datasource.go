// Package datasource defines where raw study bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens one raw input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Named is a Source that can report a display name, typically the file's base
// name. Study sources use it to tag rows with their origin file.
type Named interface {
	Source
	Name() string
}
