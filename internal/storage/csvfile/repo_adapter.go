package csvfile

import (
	"context"

	"vlingest/internal/config"
	"vlingest/internal/schema"
	"vlingest/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("csv", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, Config{Path: cfg.DSN, Columns: cfg.Columns})
	})

	// The header row is written when the file is opened.
	storage.RegisterDDL("csv", func(context.Context, storage.Repository, config.Pipeline, *schema.Registry) error {
		return nil
	})
}
