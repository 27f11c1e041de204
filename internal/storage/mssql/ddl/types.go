// Package ddl contains MSSQL-specific helpers for generating DDL from the
// output schema registry.
package ddl

import "vlingest/internal/schema"

// MapType maps a registry kind to a SQL Server column type. Numeric columns
// use FLOAT (double precision); text uses a Unicode string type.
func MapType(k schema.Kind) string {
	if k == schema.KindNumeric {
		return "FLOAT"
	}
	return "NVARCHAR(MAX)"
}
