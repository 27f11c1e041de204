// Package ddl contains Postgres-specific helpers for generating DDL from the
// output schema registry.
package ddl

import "vlingest/internal/schema"

// MapType maps a registry kind to a Postgres column type.
//
//	numeric -> DOUBLE PRECISION
//	string  -> TEXT
func MapType(k schema.Kind) string {
	if k == schema.KindNumeric {
		return "DOUBLE PRECISION"
	}
	return "TEXT"
}
