// Package mssql wires the SQL Server backend into the storage factory.
package mssql

import (
	"context"
	"fmt"

	"vlingest/internal/config"
	"vlingest/internal/schema"
	"vlingest/internal/storage"
	msddl "vlingest/internal/storage/mssql/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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

	storage.RegisterDDL("mssql",
		func(ctx context.Context, repo storage.Repository, spec config.Pipeline, reg *schema.Registry) error {
			td, err := msddl.FromRegistry(spec.Storage.DB.Table, spec.Storage.DB.Columns, reg)
			if err != nil {
				return fmt.Errorf("infer table definition: %w", err)
			}
			if err := msddl.EnsureTable(ctx, repo, td); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}

// wrappedRepo adapts *Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
