// Package sqlite wires the SQLite backend into the storage factory;
// registration happens in init.
package sqlite

import (
	"context"
	"fmt"

	"vlingest/internal/config"
	"vlingest/internal/schema"
	"vlingest/internal/storage"
	sqliteddl "vlingest/internal/storage/sqlite/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo adds Close to *Repository, calling the cleanup function
// returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("sqlite",
		func(ctx context.Context, repo storage.Repository, spec config.Pipeline, reg *schema.Registry) error {
			td, err := sqliteddl.FromRegistry(spec.Storage.DB.Table, spec.Storage.DB.Columns, reg)
			if err != nil {
				return fmt.Errorf("infer table definition: %w", err)
			}
			return sqliteddl.EnsureTable(ctx, repo, td)
		})
}
