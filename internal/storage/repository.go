// Package storage contains storage-agnostic contracts, the backend factory,
// and the batched loader used to write the combined dataset.
//
// Backends (csv, sqlite, postgres, mssql) register a Factory for their kind
// at init time; importing internal/storage/all wires every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the write side of a storage backend.
type Repository interface {
	// CopyFrom writes rows aligned to columns and returns the number written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a backend statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases the backend's resources.
	Close()
}

// Config is the backend-neutral connection description handed to factories.
type Config struct {
	Kind    string
	DSN     string
	Table   string
	Columns []string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
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
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
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
