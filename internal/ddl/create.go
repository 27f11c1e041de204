// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// CREATE TABLE statements from it.
//
// Dialect differences (identifier quoting and the "create if missing" guard)
// are supplied by backend packages such as internal/storage/postgres/ddl via
// a Dialect value; the column rendering rules are shared.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures what differs between SQL backends when creating a table.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string

	// QuoteIdent quotes one identifier segment. Nil emits identifiers as-is.
	QuoteIdent func(string) string

	// Wrap builds the final statement from the quoted table name and the
	// rendered column list. Nil renders a plain CREATE TABLE.
	Wrap func(fqn, body string) string
}

// Generic renders unquoted identifiers and a plain CREATE TABLE.
var Generic = Dialect{Name: "ddl"}

// BuildCreateTableSQL renders a CREATE TABLE statement for t in dialect d.
//
// Rules:
//
//   - t.FQN must be non-empty; each dotted segment is quoted separately.
//
//   - Each column must have a non-empty Name and SQLType.
//
//   - A column is rendered as:
//
//     <Name> <SQLType> [NOT NULL]
//
//     where NOT NULL is added when Nullable == false.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	name := d.Name
	if name == "" {
		name = "ddl"
	}
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", name)
	}

	quote := d.QuoteIdent
	if quote == nil {
		quote = func(s string) string { return s }
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		col := strings.TrimSpace(c.Name)
		if col == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", name, col)
		}

		var sb strings.Builder
		sb.WriteString(quote(col))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())
	}

	qfqn := QuoteFQN(fqn, quote)
	body := strings.Join(cols, ",\n  ")
	if d.Wrap != nil {
		return d.Wrap(qfqn, body), nil
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", qfqn, body), nil
}

// QuoteFQN quotes a possibly schema-qualified name segment by segment, e.g.
// "public.users" -> "public"."users" with double-quote quoting. Empty
// segments are dropped.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}
