package clientcli

import (
	"time"

	"github.com/google/uuid"
)

// SignOptions configures a sign operation.
type SignOptions struct {
	Bucket  string // empty = profile default bucket
	Objects []string
	Expires int64 // seconds, 0 = server default
}

// SignResult represents the result of signing a single object.
type SignResult struct {
	Bucket    string    `json:"bucket"`
	Object    string    `json:"object"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Method    string    `json:"method"`
	Err       error     `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	Bucket    string // empty = profile default bucket
	Object    string
	LocalPath string // empty = derive from object, "-" = stdout
}

// DownloadResult represents the result of downloading an object.
type DownloadResult struct {
	Bucket      string `json:"bucket"`
	Object      string `json:"object"`
	LocalPath   string `json:"local_path"`
	ETag        string `json:"etag,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size_bytes"`
}

// IssuanceOptions configures an issuance listing.
type IssuanceOptions struct {
	Bucket string
	Limit  int
	Cursor string
	All    bool // auto-paginate through all results
}

// IssuanceList contains paginated ledger entries.
type IssuanceList struct {
	Items      []Issuance `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// Issuance is one ledger entry as reported by the server.
type Issuance struct {
	ID        uuid.UUID `json:"id"`
	RequestID string    `json:"request_id"`
	Backend   string    `json:"backend"`
	Bucket    string    `json:"bucket"`
	Object    string    `json:"object"`
	Method    string    `json:"method"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// serverSignRequest mirrors the JSON body accepted by POST /sign.
type serverSignRequest struct {
	BucketName        string `json:"bucket_name"`
	ObjectName        string `json:"object_name"`
	ExpirationSeconds int64  `json:"expiration_seconds,omitempty"`
}

// serverSignResult mirrors the JSON response from POST /sign.
type serverSignResult struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Method    string    `json:"method"`
}

// serverError mirrors the JSON error body returned by the server.
type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
