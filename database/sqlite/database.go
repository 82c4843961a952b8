package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/signet"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables signet.Tables
}

// Connect opens a SQLite database. A single connection is used so that
// ":memory:" databases are shared across calls and writers never contend.
// Tables should be validated before calling Connect.
func Connect(_ context.Context, dsn string, tables signet.Tables) (*database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetRepo returns the IssuanceRepo for ledger operations.
func (d *database) GetRepo() signet.IssuanceRepo {
	return &Repo{db: d.db, tableName: d.tables.Issuances}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
