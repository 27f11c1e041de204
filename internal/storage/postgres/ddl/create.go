package ddl

import (
	"fmt"
	"strings"

	gddl "vlingest/internal/ddl"
)

// Dialect double-quotes identifiers so mixed-case canonical names such as
// "Log10VL" keep their case, and emits CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: QuoteIdent,
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", fqn, body)
	},
}

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS statement
// for the given table definition.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, Dialect)
}

// QuoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	QuoteIdent(`Log10VL`)    => `"Log10VL"`
//	QuoteIdent(`weird"name`) => `"weird""name"`
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
