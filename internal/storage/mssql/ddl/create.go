// Package ddl provides MSSQL-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses SQL Server-style identifier quoting: [schema].[table], [col].
//   - Wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL guard since T-SQL
//     does not support CREATE TABLE IF NOT EXISTS.
package ddl

import (
	"fmt"
	"strings"

	gddl "vlingest/internal/ddl"
)

// Dialect renders guarded T-SQL with bracket-quoted identifiers.
var Dialect = gddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: QuoteIdent,
	Wrap: func(fqn, body string) string {
		body = strings.ReplaceAll(body, ",\n  ", ",\n    ")
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
			fqn, fqn, body,
		)
	},
}

// BuildCreateTableSQL returns a T-SQL script that creates a table matching
// the provided definition if it does not already exist:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	    [col1] TYPE [NOT NULL],
//	    [col2] TYPE
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, Dialect)
}

// QuoteIdent quotes a single identifier segment for SQL Server using
// bracket syntax, escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
