package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, DOUBLE PRECISION)
//   - Nullable: whether NULL is allowed
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table") and will
// be quoted/escaped by renderers as needed.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
