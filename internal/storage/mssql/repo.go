// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. The DSN is parsed before connecting to fail fast on obvious
// mistakes.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if cfg.Table == "" {
		return nil, nil, fmt.Errorf("mssql: table must not be empty")
	}
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// CopyFrom performs a bulk insert directly into the configured target table
// inside one transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(r.cfg.Table, mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Exec executes a SQL statement, typically the guarded CREATE TABLE script.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}
