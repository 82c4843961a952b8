// Package database connects the issuance ledger to its storage backend.
//
// # Supported Backends
//
//   - PostgreSQL: production backend using a pgx connection pool
//   - SQLite: single-node backend using modernc.org/sqlite
//
// A Type of "none" disables the ledger; Connect then returns ErrDisabled.
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "signet.db",
//	    Tables: signet.Tables{Issuances: "signet_issuances"},
//	}
//
//	db, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	repo := db.GetRepo()
//
// Open pings the backend, runs idempotent migrations, and validates the
// schema. Connect only opens the connection, leaving those steps to the
// caller.
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
