// Package postgres implements the issuance ledger on PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/signet"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables signet.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: tables.Issuances}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) table() string {
	return pgx.Identifier{r.tableName}.Sanitize()
}

func (r *Repo) Record(ctx context.Context, issuance signet.Issuance) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, request_id, backend, bucket, object, method, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.table())

	_, err := r.pool.Exec(ctx, query,
		issuance.ID,
		issuance.RequestID,
		string(issuance.Backend),
		issuance.Bucket,
		issuance.Object,
		issuance.Method,
		issuance.IssuedAt.UTC(),
		issuance.ExpiresAt.UTC(),
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
		args = append(args, q.Bucket)
		conditions = append(conditions, fmt.Sprintf("bucket = $%d", len(args)))
	}

	if q.Cursor != "" {
		cursorID, err := uuid.Parse(cursor.ID)
		if err != nil {
			return signet.IssuanceList{}, fmt.Errorf("list: cursor id: %w", signet.ErrInvalidRequest)
		}
		args = append(args, cursor.IssuedAt, cursorID)
		conditions = append(conditions, fmt.Sprintf("(issued_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limit+1)
	query := fmt.Sprintf(`
		SELECT id, request_id, backend, bucket, object, method, issued_at, expires_at
		FROM %s
		%s
		ORDER BY issued_at DESC, id DESC
		LIMIT $%d
	`, r.table(), where, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return signet.IssuanceList{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]signet.Issuance, 0, limit)
	for rows.Next() {
		var i signet.Issuance
		var backend string
		if err := rows.Scan(&i.ID, &i.RequestID, &backend, &i.Bucket, &i.Object, &i.Method, &i.IssuedAt, &i.ExpiresAt); err != nil {
			return signet.IssuanceList{}, fmt.Errorf("list: scan: %w", err)
		}
		i.Backend = signet.Backend(backend)
		i.IssuedAt = i.IssuedAt.UTC()
		i.ExpiresAt = i.ExpiresAt.UTC()
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
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at < $1`, r.table())

	result, err := r.pool.Exec(ctx, query, expiredBefore.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}

	return result.RowsAffected(), nil
}
