package storage

import (
	"context"
	"fmt"
	"sync"

	"vlingest/internal/config"
	"vlingest/internal/schema"
)

// DDLBootstrapper is a backend-specific function that:
//   - derives a table definition from the output schema registry and the
//     pipeline's storage settings, and
//   - applies the appropriate DDL via repo.Exec (typically CREATE TABLE).
//
// Backends register their implementation for a storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, spec config.Pipeline, reg *schema.Registry) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given storage
// kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTableFromPipeline locates the DDLBootstrapper for spec.Storage.Kind
// and invokes it. If none is registered for the kind, an error is returned.
func EnsureTableFromPipeline(ctx context.Context, spec config.Pipeline, reg *schema.Registry, repo Repository) error {
	ddlMu.RLock()
	fn, ok := ddlFns[spec.Storage.Kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", spec.Storage.Kind)
	}
	return fn(ctx, repo, spec, reg)
}
