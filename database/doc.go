// Package database provides a unified interface for connecting to metadata backends.
//
// The package supports PostgreSQL and SQLite and handles connection
// management, migrations, and schema validation for the photo and role grant
// tables.
//
// # Supported Backends
//
//   - PostgreSQL: Production-ready backend using pgx connection pool
//   - SQLite: Lightweight backend suitable for development and single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "folio.db",
//	    Tables: folio.Tables{Photos: "photos", RoleGrants: "role_grants"},
//	}
//
//	db, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	photos, err := db.PhotoRepo()
//	grants, err := db.GrantRepo()
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
