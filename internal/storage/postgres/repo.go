// Package postgres implements a Postgres repository using pgx v5. Rows are
// written with the COPY protocol directly into the target table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN     string   // connection string for pgxpool
	Table   string   // target table, optionally schema-qualified, e.g. "public.viral_load"
	Columns []string // ordered columns for COPY
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, nil, fmt.Errorf("postgres: table must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// CopyFrom streams rows into the target table with COPY. Server-side detail
// is surfaced in the error when available.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, splitFQN(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy: %s (%s): %w", pgErr.Detail, pgErr.SQLState(), err)
		}
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}
