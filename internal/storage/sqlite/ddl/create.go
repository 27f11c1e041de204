package ddl

import (
	"fmt"
	"strings"

	gddl "vlingest/internal/ddl"
)

// Dialect quotes identifiers with double quotes and emits
// CREATE TABLE IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:       "sqlite ddl",
	QuoteIdent: QuoteIdent,
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", fqn, body)
	},
}

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement of the form:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL],
//	  "col2" TYPE
//	);
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, Dialect)
}

// QuoteIdent double-quotes one identifier, escaping embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
