package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sagarc03/signet"
	"github.com/sagarc03/signet/database/internal/schema"
)

// SQLite reports declared column types, which is what the migration writes.
var issuancesColumns = schema.Columns{
	"id":         {Type: "text"},
	"request_id": {Type: "text"},
	"backend":    {Type: "text"},
	"bucket":     {Type: "text"},
	"object":     {Type: "text"},
	"method":     {Type: "text"},
	"issued_at":  {Type: "text"},
	"expires_at": {Type: "text"},
}

// ValidateSchema checks that the issuances table exists with the expected
// columns, types, and nullability.
func ValidateSchema(ctx context.Context, db *sql.DB, tables signet.Tables) error {
	name := tables.Issuances
	if !signet.IsValidTableName(name) {
		return fmt.Errorf("validate schema: invalid table name: %s", name)
	}

	var found string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&found)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("validate schema: table %s does not exist", name)
	case err != nil:
		return fmt.Errorf("validate schema: check table %s: %w", name, err)
	}

	got, err := tableColumns(ctx, db, name)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", name, err)
	}

	if err := schema.Compare(name, issuancesColumns, got); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (schema.Columns, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols := make(schema.Columns)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			defaultValue     sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols[name] = schema.Column{Type: colType, Nullable: notNull == 0}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return cols, nil
}
