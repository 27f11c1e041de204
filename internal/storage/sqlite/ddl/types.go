// Package ddl contains SQLite-specific helpers for generating DDL from the
// output schema registry.
package ddl

import "vlingest/internal/schema"

// MapType maps a registry kind to a SQLite column type. SQLite is dynamically
// typed, so the result only sets the column affinity.
func MapType(k schema.Kind) string {
	if k == schema.KindNumeric {
		return "REAL"
	}
	return "TEXT"
}
