package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:vl.db?cache=shared"
	//   ":memory:"
	DSN string

	// Table is the target table name, e.g. "viral_load". A schema-qualified
	// name such as "main.viral_load" is accepted.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
