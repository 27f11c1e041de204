package ddl

import (
	"context"

	gddl "vlingest/internal/ddl"
	"vlingest/internal/schema"
	"vlingest/internal/storage"
)

// FromRegistry derives a Postgres table definition for columns (all registry
// columns when empty).
func FromRegistry(table string, columns []string, reg *schema.Registry) (gddl.TableDef, error) {
	return gddl.FromRegistry(table, columns, reg, MapType)
}

// EnsureTable creates the target table if it does not exist. It is
// idempotent.
func EnsureTable(ctx context.Context, repo storage.Repository, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
