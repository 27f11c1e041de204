// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories and DDL bootstrappers with the storage package. The
// following storage kinds become available:
//
//   - "csv"      (vlingest/internal/storage/csvfile)
//   - "sqlite"   (vlingest/internal/storage/sqlite)
//   - "postgres" (vlingest/internal/storage/postgres)
//   - "mssql"    (vlingest/internal/storage/mssql)
//
// Typical usage (in cmd/vlingest or a similar wiring layer):
//
//	import _ "vlingest/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind:    spec.Storage.Kind,
//	    DSN:     spec.Storage.DB.DSN,
//	    Table:   spec.Storage.DB.Table,
//	    Columns: columns,
//	})
//	...
//	if spec.Storage.DB.AutoCreateTable {
//	    err = storage.EnsureTableFromPipeline(ctx, spec, schema.Canonical, repo)
//	}
package all

import (
	_ "vlingest/internal/storage/csvfile"
	_ "vlingest/internal/storage/mssql"
	_ "vlingest/internal/storage/postgres"
	_ "vlingest/internal/storage/sqlite"
)
