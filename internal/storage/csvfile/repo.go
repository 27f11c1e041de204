// Package csvfile implements the default storage backend: one CSV file whose
// header is the output columns in order. Nulls are written as empty fields and
// floats in their shortest round-tripping decimal form.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"vlingest/pkg/records"
)

// Config holds csvfile repository configuration.
type Config struct {
	// Path is the output file; parent directories are created.
	Path string
	// Columns, when set, are written as the header on open so a run that
	// loads no rows still leaves a header-only file.
	Columns []string
}

// Repository writes rows to a CSV file. It is not safe for concurrent use.
type Repository struct {
	path    string
	f       *os.File
	w       *csv.Writer
	h       *xxh3.Hasher
	header  []string
	written int64
}

// NewRepository creates (or truncates) the output file and writes the header
// when cfg.Columns is set.
func NewRepository(_ context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("csvfile: output path must not be empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("csvfile: mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("csvfile: create: %w", err)
	}
	h := xxh3.New()
	r := &Repository{
		path: cfg.Path,
		f:    f,
		w:    csv.NewWriter(io.MultiWriter(f, h)),
		h:    h,
	}
	if len(cfg.Columns) > 0 {
		if err := r.writeHeader(cfg.Columns); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return r, nil
}

func (r *Repository) writeHeader(columns []string) error {
	if err := r.w.Write(columns); err != nil {
		return fmt.Errorf("csvfile: write header: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("csvfile: write header: %w", err)
	}
	r.header = slices.Clone(columns)
	return nil
}

// CopyFrom appends rows. If no header was written yet the first call writes
// one; every call must pass the header's columns.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("csvfile: CopyFrom: columns must not be empty")
	}
	if r.header == nil {
		if err := r.writeHeader(columns); err != nil {
			return 0, err
		}
	} else if !slices.Equal(r.header, columns) {
		return 0, fmt.Errorf("csvfile: columns changed between batches: %v != %v", columns, r.header)
	}

	rec := make([]string, len(columns))
	var n int64
	for i, row := range rows {
		if len(row) != len(columns) {
			return n, fmt.Errorf("csvfile: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		for j, v := range row {
			rec[j] = records.Text(v)
		}
		if err := r.w.Write(rec); err != nil {
			return n, fmt.Errorf("csvfile: write: %w", err)
		}
		n++
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return n, fmt.Errorf("csvfile: flush: %w", err)
	}
	r.written += n
	return n, nil
}

// Exec is a no-op: the header row carries the schema.
func (r *Repository) Exec(context.Context, string) error { return nil }

// Digest returns the xxh3 digest of the bytes written so far.
func (r *Repository) Digest() uint64 { return r.h.Sum64() }

// Path returns the output file path.
func (r *Repository) Path() string { return r.path }

// Close flushes and closes the file and logs the output digest.
func (r *Repository) Close() {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		zap.L().Error("csvfile: flush on close", zap.String("path", r.path), zap.Error(err))
	}
	if err := r.f.Close(); err != nil {
		zap.L().Error("csvfile: close", zap.String("path", r.path), zap.Error(err))
		return
	}
	zap.L().Info("csvfile: wrote output",
		zap.String("path", r.path),
		zap.Int64("rows", r.written),
		zap.String("xxh3", fmt.Sprintf("%016x", r.Digest())))
}
