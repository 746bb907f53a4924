// Package all wires all built-in storage backends into the storage factory.
//
// Importing it for side effects makes the following kinds available to
// storage.New:
//
//   - "postgres" (vistoria/internal/storage/postgres)
//   - "mssql"    (vistoria/internal/storage/mssql)
//   - "sqlite"   (vistoria/internal/storage/sqlite)
package all

import (
	_ "vistoria/internal/storage/mssql"
	_ "vistoria/internal/storage/postgres"
	_ "vistoria/internal/storage/sqlite"
)
