// Package postgres wires the Postgres backend into the storage factory and
// registers its DDL bootstrapper, so callers can create the destination
// table based only on storage.kind.
package postgres

import (
	"context"
	"fmt"

	"vlingest/internal/config"
	"vlingest/internal/schema"
	"vlingest/internal/storage"
	pgddl "vlingest/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo implements storage.Repository by delegating to *Repository and
// providing a Close method that calls the close function returned by
// NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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

	storage.RegisterDDL("postgres",
		func(ctx context.Context, repo storage.Repository, spec config.Pipeline, reg *schema.Registry) error {
			td, err := pgddl.FromRegistry(spec.Storage.DB.Table, spec.Storage.DB.Columns, reg)
			if err != nil {
				return fmt.Errorf("infer table definition: %w", err)
			}
			if err := pgddl.EnsureTable(ctx, repo, td); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}
