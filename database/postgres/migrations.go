package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/signet"
)

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, pool *pgxpool.Pool) error
	Down      func(ctx context.Context, pool *pgxpool.Pool) error
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
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables signet.Tables) error {
	for _, migration := range getTableMigrations(tables) {
		if err := migration.Up(ctx, pool); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}
	return nil
}

// DropTables removes all ledger tables in reverse creation order.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables signet.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, pool); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func createIssuancesTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		quotedTable := pgx.Identifier{tableName}.Sanitize()
		indexIssued := pgx.Identifier{fmt.Sprintf("idx_%s_issued", tableName)}.Sanitize()
		indexBucketIssued := pgx.Identifier{fmt.Sprintf("idx_%s_bucket_issued", tableName)}.Sanitize()
		indexExpires := pgx.Identifier{fmt.Sprintf("idx_%s_expires_at", tableName)}.Sanitize()

		sql := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				request_id TEXT NOT NULL,
				backend TEXT NOT NULL,
				bucket TEXT NOT NULL,
				object TEXT NOT NULL,
				method TEXT NOT NULL,
				issued_at TIMESTAMPTZ NOT NULL,
				expires_at TIMESTAMPTZ NOT NULL
			);

			CREATE INDEX IF NOT EXISTS %s
			ON %s (issued_at DESC, id DESC);

			CREATE INDEX IF NOT EXISTS %s
			ON %s (bucket, issued_at DESC, id DESC);

			CREATE INDEX IF NOT EXISTS %s
			ON %s (expires_at);
		`,
			quotedTable,
			indexIssued, quotedTable,
			indexBucketIssued, quotedTable,
			indexExpires, quotedTable,
		)

		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("create issuances table: %w", err)
		}
		return nil
	}
}

func dropTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{tableName}.Sanitize()))
		return err
	}
}
