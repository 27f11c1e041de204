package ddl

import (
	"fmt"

	"vlingest/internal/schema"
)

// FromRegistry builds a table definition for the given output columns. Types
// come from each column's registry kind via mapType; every column is
// nullable because per-cell failures are stored as NULL. An empty columns
// list selects every registry column in schema order.
func FromRegistry(table string, columns []string, reg *schema.Registry, mapType func(schema.Kind) string) (TableDef, error) {
	if table == "" {
		return TableDef{}, fmt.Errorf("ddl: missing table")
	}
	if len(columns) == 0 {
		columns = reg.Columns()
	}
	defs := make([]ColumnDef, 0, len(columns))
	for _, c := range columns {
		k := reg.Kind(c)
		if k == schema.KindUnknown {
			return TableDef{}, fmt.Errorf("ddl: column %q is not in the output schema", c)
		}
		defs = append(defs, ColumnDef{Name: c, SQLType: mapType(k), Nullable: true})
	}
	return TableDef{FQN: table, Columns: defs}, nil
}
