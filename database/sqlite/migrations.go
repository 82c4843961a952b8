package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/signet"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, db *sql.DB) error
	Down      func(ctx context.Context, db *sql.DB) error
}

func getTableMigrations(tables signet.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Issuances,
			Up:        createIssuancesTable(tables.Issuances),
			Down:      dropTable(tables.Issuances),
		},
	}
}

// Migrate creates all ledger tables and indexes. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB, tables signet.Tables) error {
	for _, migration := range getTableMigrations(tables) {
		if err := migration.Up(ctx, db); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}
	return nil
}

// DropTables removes all ledger tables in reverse creation order.
func DropTables(ctx context.Context, db *sql.DB, tables signet.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, db); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func createIssuancesTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tableName)

		// Timestamps are fixed-width UTC text so that string order is time order.
		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT NOT NULL PRIMARY KEY,
				request_id TEXT NOT NULL,
				backend TEXT NOT NULL,
				bucket TEXT NOT NULL,
				object TEXT NOT NULL,
				method TEXT NOT NULL,
				issued_at TEXT NOT NULL,
				expires_at TEXT NOT NULL
			)
		`, quotedTable)

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		indexes := []struct {
			name    string
			columns string
		}{
			{name: "issued", columns: "issued_at DESC, id DESC"},
			{name: "bucket_issued", columns: "bucket, issued_at DESC, id DESC"},
			{name: "expires_at", columns: "expires_at"},
		}

		for _, idx := range indexes {
			indexName := quoteIdentifier(fmt.Sprintf("idx_%s_%s", tableName, idx.name))
			indexSQL := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s)`, indexName, quotedTable, idx.columns)

			if _, err := db.ExecContext(ctx, indexSQL); err != nil {
				return fmt.Errorf("create index %s: %w", idx.name, err)
			}
		}

		return nil
	}
}

func dropTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(tableName)))
		return err
	}
}
