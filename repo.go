package signet

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CredentialProvider loads the key material used for signing.
//
// Implementations must be safe for concurrent use and must never include key
// material in returned errors.
type CredentialProvider interface {
	// Credential returns the current signing credential.
	//
	// Returns:
	//   - Credential: key material ready for a URLSigner
	//   - error: wrapping ErrCredential when the material is missing, unreadable, or malformed
	Credential(ctx context.Context) (Credential, error)
}

// URLSigner computes a signed URL for an object. Signing is expected to be a
// local cryptographic operation; implementations should not contact the
// storage backend.
type URLSigner interface {
	// SignURL returns a URL granting opts.Method access to ref for
	// opts.Expiry, counted from the signing time embedded in the URL.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - cred: Credential from a CredentialProvider
	//   - ref: Bucket and object to sign for
	//   - opts: Method, validity window, and issue time
	//
	// Returns:
	//   - string: the fully qualified signed URL
	//   - error: wrapping ErrBackend when the reference is malformed or signing fails
	SignURL(ctx context.Context, cred Credential, ref ObjectRef, opts SignOptions) (string, error)
}

// ObjectChecker confirms that an object exists before a URL is issued for it.
type ObjectChecker interface {
	// Exists returns nil when ref exists, or an error wrapping ErrBackend.
	Exists(ctx context.Context, ref ObjectRef) error
}

// IssuanceRepo persists the audit ledger of issued URLs.
// Implementations must handle concurrent access safely.
type IssuanceRepo interface {
	// Record stores one issuance. The ID is generated by the caller.
	Record(ctx context.Context, issuance Issuance) error

	// List returns issuances newest first, optionally filtered by bucket.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - q: IssuanceQuery with optional bucket filter, limit, and cursor for pagination
	//
	// Returns:
	//   - IssuanceList: matching items and cursor for the next page
	//   - error: ErrInvalidRequest for a malformed cursor, or other database errors
	List(ctx context.Context, q IssuanceQuery) (IssuanceList, error)

	// Prune deletes issuances whose URLs expired before the given time and
	// returns the number of rows removed.
	Prune(ctx context.Context, expiredBefore time.Time) (int64, error)
}

// Tables holds configurable table names for ledger storage.
type Tables struct {
	Issuances string `mapstructure:"issuances"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Issuances == "" {
		return errors.New("validate tables: issuances table name cannot be empty")
	}

	if !IsValidTableName(t.Issuances) {
		return fmt.Errorf("validate tables: invalid issuances table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Issuances)
	}

	return nil
}

// Cursor represents pagination cursor data for ledger listing.
type Cursor struct {
	IssuedAt time.Time
	ID       string
}

// EncodeCursor encodes cursor data to a base64 string for pagination.
func EncodeCursor(issuedAt time.Time, id string) string {
	data := issuedAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.URLEncoding.EncodeToString([]byte(data))
}

// DecodeCursor decodes a pagination cursor string back to cursor data.
func DecodeCursor(cursor string) (Cursor, error) {
	if cursor == "" {
		return Cursor{}, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid encoding: %w", ErrInvalidRequest)
	}

	issuedAtStr, id, found := strings.Cut(string(decoded), "|")
	if !found || id == "" {
		return Cursor{}, fmt.Errorf("decode cursor: invalid format: %w", ErrInvalidRequest)
	}

	issuedAt, err := time.Parse(time.RFC3339Nano, issuedAtStr)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid timestamp: %w", ErrInvalidRequest)
	}

	return Cursor{IssuedAt: issuedAt, ID: id}, nil
}
