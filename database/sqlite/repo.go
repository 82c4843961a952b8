// Package sqlite implements the issuance ledger on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/signet"
)

// timeLayout is RFC 3339 with fixed nanosecond width. Stored values are
// always UTC, so lexical order matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type Repo struct {
	db        *sql.DB
	tableName string
}

func NewRepo(db *sql.DB, tables signet.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: tables.Issuances}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func (r *Repo) Record(ctx context.Context, issuance signet.Issuance) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, request_id, backend, bucket, object, method, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quoteIdentifier(r.tableName))

	_, err := r.db.ExecContext(ctx, query,
		issuance.ID.String(),
		issuance.RequestID,
		string(issuance.Backend),
		issuance.Bucket,
		issuance.Object,
		issuance.Method,
		formatTime(issuance.IssuedAt),
		formatTime(issuance.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}

	return nil
}

func (r *Repo) List(ctx context.Context, q signet.IssuanceQuery) (signet.IssuanceList, error) {
	cursor, err := signet.DecodeCursor(q.Cursor)
	if err != nil {
		return signet.IssuanceList{}, fmt.Errorf("list: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	var conditions []string
	var args []any

	if q.Bucket != "" {
		conditions = append(conditions, "bucket = ?")
		args = append(args, q.Bucket)
	}

	if q.Cursor != "" {
		if _, err := uuid.Parse(cursor.ID); err != nil {
			return signet.IssuanceList{}, fmt.Errorf("list: cursor id: %w", signet.ErrInvalidRequest)
		}
		conditions = append(conditions, "(issued_at, id) < (?, ?)")
		args = append(args, formatTime(cursor.IssuedAt), cursor.ID)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, request_id, backend, bucket, object, method, issued_at, expires_at
		FROM %s
		%s
		ORDER BY issued_at DESC, id DESC
		LIMIT ?`, quoteIdentifier(r.tableName), where)
	args = append(args, limit+1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return signet.IssuanceList{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]signet.Issuance, 0, limit)
	for rows.Next() {
		var i signet.Issuance
		var idStr, backend, issuedAt, expiresAt string

		if scanErr := rows.Scan(&idStr, &i.RequestID, &backend, &i.Bucket, &i.Object, &i.Method, &issuedAt, &expiresAt); scanErr != nil {
			return signet.IssuanceList{}, fmt.Errorf("list: scan: %w", scanErr)
		}

		var parseErr error
		if i.ID, parseErr = uuid.Parse(idStr); parseErr != nil {
			return signet.IssuanceList{}, fmt.Errorf("list: parse uuid: %w", parseErr)
		}
		if i.IssuedAt, parseErr = time.Parse(timeLayout, issuedAt); parseErr != nil {
			return signet.IssuanceList{}, fmt.Errorf("list: parse issued_at: %w", parseErr)
		}
		if i.ExpiresAt, parseErr = time.Parse(timeLayout, expiresAt); parseErr != nil {
			return signet.IssuanceList{}, fmt.Errorf("list: parse expires_at: %w", parseErr)
		}
		i.Backend = signet.Backend(backend)

		items = append(items, i)
	}

	if err := rows.Err(); err != nil {
		return signet.IssuanceList{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextCursor string
	if len(items) > limit {
		last := items[limit-1]
		nextCursor = signet.EncodeCursor(last.IssuedAt, last.ID.String())
		items = items[:limit]
	}

	return signet.IssuanceList{Items: items, NextCursor: nextCursor}, nil
}

func (r *Repo) Prune(ctx context.Context, expiredBefore time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at < ?`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, formatTime(expiredBefore))
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune: rows affected: %w", err)
	}

	return n, nil
}
