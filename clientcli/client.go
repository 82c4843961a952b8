package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultListLimit is the page size used when IssuanceOptions.Limit is unset.
	DefaultListLimit = 100

	maxListLimit = 1000
)

// Client performs operations against a Signet server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	// Apply defaults, normalizing the endpoint
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Sign requests a signed URL for each object.
// Continues on error, collecting results for all objects.
func (c *Client) Sign(ctx context.Context, opts SignOptions) ([]SignResult, error) {
	if len(opts.Objects) == 0 {
		return nil, ErrNoObjects
	}

	bucket := c.bucket(opts.Bucket)
	if bucket == "" {
		return nil, ErrBucketRequired
	}

	expires := opts.Expires
	if expires <= 0 {
		expires = c.config.Expires
	}

	results := make([]SignResult, 0, len(opts.Objects))
	for _, object := range opts.Objects {
		results = append(results, c.signSingle(ctx, bucket, object, expires))
	}

	return results, nil
}

// HasSignErrors returns true if any sign result has an error.
func HasSignErrors(results []SignResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

func (c *Client) signSingle(ctx context.Context, bucket, object string, expires int64) SignResult {
	result := SignResult{Bucket: bucket, Object: object}

	if object == "" {
		result.Err = ErrEmptyObject
		return result
	}

	body, err := json.Marshal(serverSignRequest{
		BucketName:        bucket,
		ObjectName:        object,
		ExpirationSeconds: expires,
	})
	if err != nil {
		result.Err = fmt.Errorf("encode request: %w", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+"/sign", bytes.NewReader(body))
	if err != nil {
		result.Err = fmt.Errorf("create request: %w", err)
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	var signed serverSignResult
	if err := c.doJSON(req, &signed); err != nil {
		result.Err = err
		return result
	}

	result.URL = signed.URL
	result.ExpiresAt = signed.ExpiresAt
	result.Method = signed.Method
	return result
}

// Download signs a URL for the object and fetches it.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.Object == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyObject)
	}

	bucket := c.bucket(opts.Bucket)
	if bucket == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrBucketRequired)
	}

	signed := c.signSingle(ctx, bucket, opts.Object, c.config.Expires)
	if signed.Err != nil {
		return nil, nil, fmt.Errorf("sign %s/%s: %w", bucket, opts.Object, signed.Err)
	}

	// The signed URL carries its own authorization
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed.URL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("fetch object: %w", &APIError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	result := &DownloadResult{
		Bucket:      bucket,
		Object:      opts.Object,
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	// If stdout requested, return the body for the caller to handle
	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	// Determine local path
	localPath := opts.LocalPath
	if localPath == "" {
		localPath = path.Base(opts.Object)
	}
	result.LocalPath = localPath

	// Create parent directories if needed
	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		_ = os.Remove(localPath)
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// Issuances lists the server's issuance ledger, newest first.
// If opts.All is true, paginates through all results.
func (c *Client) Issuances(ctx context.Context, opts IssuanceOptions) (*IssuanceList, error) {
	if opts.All {
		return c.issuancesAll(ctx, opts)
	}
	return c.issuancesPage(ctx, opts)
}

// issuancesPage fetches a single page of results.
func (c *Client) issuancesPage(ctx context.Context, opts IssuanceOptions) (*IssuanceList, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if opts.Bucket != "" {
		query.Set("bucket", opts.Bucket)
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/issuances?"+query.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var list IssuanceList
	if err := c.doJSON(req, &list); err != nil {
		return nil, err
	}

	return &list, nil
}

// issuancesAll fetches all pages of results.
func (c *Client) issuancesAll(ctx context.Context, opts IssuanceOptions) (*IssuanceList, error) {
	var allItems []Issuance
	cursor := opts.Cursor

	for {
		// Check context cancellation
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := c.issuancesPage(ctx, IssuanceOptions{
			Bucket: opts.Bucket,
			Limit:  opts.Limit,
			Cursor: cursor,
		})
		if err != nil {
			return nil, err
		}

		allItems = append(allItems, page.Items...)

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return &IssuanceList{Items: allItems}, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	var status struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(req, &status); err != nil {
		return err
	}
	if status.Status != "ok" {
		return fmt.Errorf("unexpected health status: %q", status.Status)
	}
	return nil
}

func (c *Client) bucket(override string) string {
	if override != "" {
		return override
	}
	return c.config.Bucket
}

// doJSON executes req and decodes a 200 response into v.
func (c *Client) doJSON(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseServerError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// parseServerError extracts the error code and message from a server response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	var se serverError
	if json.Unmarshal(body, &se) == nil {
		apiErr.Code = se.Error
		apiErr.Message = se.Message
	}

	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string // e.g. "invalid_request", "backend_error"
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error: %d %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode and,
// when target sets one, the same Code.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	if t.StatusCode != e.StatusCode {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the route or resource does not exist (404),
	// including GET /issuances on a server without a ledger.
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrInvalidRequest is returned when the server rejects the request (400).
	ErrInvalidRequest = &APIError{StatusCode: http.StatusBadRequest, Code: "invalid_request"}

	// ErrCredential is returned when the server cannot load its signing credentials.
	ErrCredential = &APIError{StatusCode: http.StatusInternalServerError, Code: "credential_error"}

	// ErrBackend is returned when the storage backend could not sign the URL.
	ErrBackend = &APIError{StatusCode: http.StatusInternalServerError, Code: "backend_error"}
)
