package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/signet"
	"github.com/sagarc03/signet/database/internal/schema"
)

var issuancesColumns = schema.Columns{
	"id":         {Type: "uuid"},
	"request_id": {Type: "text"},
	"backend":    {Type: "text"},
	"bucket":     {Type: "text"},
	"object":     {Type: "text"},
	"method":     {Type: "text"},
	"issued_at":  {Type: "timestamp with time zone"},
	"expires_at": {Type: "timestamp with time zone"},
}

// ValidateSchema checks that the issuances table exists in the current schema
// with the expected columns, types, and nullability. It is meant for
// deployments that manage migrations themselves.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables signet.Tables) error {
	name := tables.Issuances
	if !signet.IsValidTableName(name) {
		return fmt.Errorf("validate schema: invalid table name: %s", name)
	}

	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)
	`, name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("validate schema: check table %s: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("validate schema: table %s does not exist", name)
	}

	got, err := tableColumns(ctx, pool, name)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", name, err)
	}

	if err := schema.Compare(name, issuancesColumns, got); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	return nil
}

func tableColumns(ctx context.Context, pool *pgxpool.Pool, table string) (schema.Columns, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	cols := make(schema.Columns)
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols[name] = schema.Column{Type: dataType, Nullable: nullable == "YES"}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return cols, nil
}
