package signet

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultExpirationSeconds is the validity window used when a request omits one.
	DefaultExpirationSeconds = 3600
	// MaxExpirationSeconds is the longest validity window accepted by V4 signing (7 days).
	MaxExpirationSeconds = 604800
	// SignMethod is the only HTTP method signed URLs are issued for.
	SignMethod = http.MethodGet
)

// SignRequest identifies the object to sign a URL for.
// Expiration is in seconds; nil means the service default.
type SignRequest struct {
	Bucket     string `json:"bucket_name" validate:"required"`
	Object     string `json:"object_name" validate:"required"`
	Expiration *int64 `json:"expiration_seconds,omitempty"`
	RequestID  string `json:"-"`
}

// SignResult is the outcome of a successful signing call.
type SignResult struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Method    string    `json:"method"`
}

// ObjectRef addresses an object within the storage backend.
type ObjectRef struct {
	Bucket string
	Object string
}

func (r ObjectRef) String() string {
	return r.Bucket + "/" + r.Object
}

// SignOptions carries the parameters a URLSigner needs besides the object.
type SignOptions struct {
	Method   string
	Expiry   time.Duration
	IssuedAt time.Time
}

// Backend names a URL signing backend.
type Backend string

const (
	BackendGCS Backend = "gcs"
	BackendS3  Backend = "s3"
)

func (b Backend) IsValid() bool {
	switch b {
	case BackendGCS, BackendS3:
		return true
	default:
		return false
	}
}

func ParseBackend(s string) (Backend, error) {
	b := Backend(s)
	if !b.IsValid() {
		return "", fmt.Errorf("invalid backend: %s (valid backends: gcs, s3)", s)
	}
	return b, nil
}

// CredentialKind describes the shape of the key material in a Credential.
type CredentialKind string

const (
	// CredentialServiceAccount holds a service account email and PEM private key.
	CredentialServiceAccount CredentialKind = "service_account"
	// CredentialAccessKey holds an access key id and secret.
	CredentialAccessKey CredentialKind = "access_key"
)

// Credential is the key material used to sign URLs. It is never persisted or
// returned to callers, and its String and LogValue forms omit all secrets.
type Credential struct {
	Kind         CredentialKind
	AccessID     string
	PrivateKey   []byte
	SecretKey    string
	SessionToken string
	Source       string
}

func (c Credential) String() string {
	return fmt.Sprintf("credential(%s, %s)", c.Kind, c.AccessID)
}

func (c Credential) GoString() string {
	return c.String()
}

// LogValue implements slog.LogValuer.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(c.Kind)),
		slog.String("access_id", c.AccessID),
		slog.String("source", c.Source),
	)
}

// Issuance is the ledger record of one issued URL. It never holds the URL or
// its signature.
type Issuance struct {
	ID        uuid.UUID `json:"id"`
	RequestID string    `json:"request_id"`
	Backend   Backend   `json:"backend"`
	Bucket    string    `json:"bucket"`
	Object    string    `json:"object"`
	Method    string    `json:"method"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type IssuanceQuery struct {
	Bucket string
	Limit  int
	Cursor string
}

type IssuanceList struct {
	Items      []Issuance `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
