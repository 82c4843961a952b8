package clientcli_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/signet/clientcli"
)

var expiresAt = time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)

func newClient(t *testing.T, srv *httptest.Server, cfg clientcli.Config) *clientcli.Client {
	t.Helper()

	cfg.Endpoint = srv.URL
	client, err := clientcli.New(&cfg)
	require.NoError(t, err)
	return client
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}

// signServer answers POST /sign with a URL pointing back at itself.
func signServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sign":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

			object, _ := body["object_name"].(string)
			if object == "missing.txt" {
				writeError(w, http.StatusInternalServerError, "backend_error", "Storage backend could not sign the URL")
				return
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"url":        srv.URL + "/objects/" + body["bucket_name"].(string) + "/" + object + "?X-Goog-Signature=abc",
				"expires_at": expiresAt,
				"method":     "GET",
			})
		case "/objects/reports/q1.pdf":
			assert.Equal(t, "abc", r.URL.Query().Get("X-Goog-Signature"))
			w.Header().Set("ETag", `"etag-1"`)
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = io.WriteString(w, "pdf content")
		case "/objects/reports/truncated.pdf":
			// The connection closes before the declared length is sent.
			w.Header().Set("Content-Length", "1024")
			_, _ = io.WriteString(w, "partial")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := clientcli.New(nil)
		assert.ErrorIs(t, err, clientcli.ErrConfigRequired)
	})

	t.Run("empty endpoint uses default", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		_, err := clientcli.New(&clientcli.Config{Endpoint: "localhost:8080"})
		assert.ErrorIs(t, err, clientcli.ErrInvalidEndpoint)
	})
}

func TestClient_Sign(t *testing.T) {
	t.Run("signs each object", func(t *testing.T) {
		srv := signServer(t)
		client := newClient(t, srv, clientcli.Config{Bucket: "reports"})

		results, err := client.Sign(context.Background(), clientcli.SignOptions{
			Objects: []string{"q1.pdf", "q2.pdf"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.False(t, clientcli.HasSignErrors(results))
		assert.Equal(t, "reports", results[0].Bucket)
		assert.Equal(t, "q1.pdf", results[0].Object)
		assert.Equal(t, srv.URL+"/objects/reports/q1.pdf?X-Goog-Signature=abc", results[0].URL)
		assert.True(t, expiresAt.Equal(results[0].ExpiresAt))
		assert.Equal(t, "GET", results[0].Method)
		assert.Equal(t, "q2.pdf", results[1].Object)
	})

	t.Run("sends expiration", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(map[string]any{"url": "https://example.com/x", "expires_at": expiresAt, "method": "GET"})
		}))
		defer srv.Close()

		client := newClient(t, srv, clientcli.Config{Expires: 300})

		_, err := client.Sign(context.Background(), clientcli.SignOptions{Bucket: "media", Objects: []string{"a.png"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"bucket_name": "media", "object_name": "a.png", "expiration_seconds": float64(300)}, got)

		_, err = client.Sign(context.Background(), clientcli.SignOptions{Bucket: "media", Objects: []string{"a.png"}, Expires: 60})
		require.NoError(t, err)
		assert.Equal(t, float64(60), got["expiration_seconds"])
	})

	t.Run("omits expiration when unset", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(map[string]any{"url": "https://example.com/x", "expires_at": expiresAt, "method": "GET"})
		}))
		defer srv.Close()

		client := newClient(t, srv, clientcli.Config{})

		_, err := client.Sign(context.Background(), clientcli.SignOptions{Bucket: "media", Objects: []string{"a.png"}})
		require.NoError(t, err)
		assert.NotContains(t, got, "expiration_seconds")
	})

	t.Run("continues past failures", func(t *testing.T) {
		srv := signServer(t)
		client := newClient(t, srv, clientcli.Config{Bucket: "reports"})

		results, err := client.Sign(context.Background(), clientcli.SignOptions{
			Objects: []string{"missing.txt", "", "q1.pdf"},
		})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.True(t, clientcli.HasSignErrors(results))

		assert.ErrorIs(t, results[0].Err, clientcli.ErrBackend)
		var apiErr *clientcli.APIError
		require.ErrorAs(t, results[0].Err, &apiErr)
		assert.Equal(t, "Storage backend could not sign the URL", apiErr.Message)

		assert.ErrorIs(t, results[1].Err, clientcli.ErrEmptyObject)
		assert.NoError(t, results[2].Err)
	})

	t.Run("no objects", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Bucket: "reports"})
		require.NoError(t, err)

		_, err = client.Sign(context.Background(), clientcli.SignOptions{})
		assert.ErrorIs(t, err, clientcli.ErrNoObjects)
	})

	t.Run("no bucket", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)

		_, err = client.Sign(context.Background(), clientcli.SignOptions{Objects: []string{"a"}})
		assert.ErrorIs(t, err, clientcli.ErrBucketRequired)
	})

	t.Run("invalid request", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusBadRequest, "invalid_request", "expiration_seconds must not exceed 604800")
		}))
		defer srv.Close()

		client := newClient(t, srv, clientcli.Config{})

		results, err := client.Sign(context.Background(), clientcli.SignOptions{Bucket: "b", Objects: []string{"o"}, Expires: 999999})
		require.NoError(t, err)
		assert.ErrorIs(t, results[0].Err, clientcli.ErrInvalidRequest)
		assert.NotErrorIs(t, results[0].Err, clientcli.ErrBackend)
		assert.EqualError(t, results[0].Err, "server error: 400 invalid_request - expiration_seconds must not exceed 604800")
	})
}

func TestClient_Download(t *testing.T) {
	t.Run("to file", func(t *testing.T) {
		srv := signServer(t)
		client := newClient(t, srv, clientcli.Config{Bucket: "reports"})

		localPath := filepath.Join(t.TempDir(), "out", "q1.pdf")
		result, reader, err := client.Download(context.Background(), clientcli.DownloadOptions{
			Object:    "q1.pdf",
			LocalPath: localPath,
		})
		require.NoError(t, err)
		assert.Nil(t, reader)

		assert.Equal(t, "reports", result.Bucket)
		assert.Equal(t, localPath, result.LocalPath)
		assert.Equal(t, "etag-1", result.ETag)
		assert.Equal(t, "application/pdf", result.ContentType)
		assert.Equal(t, int64(len("pdf content")), result.Size)

		data, err := os.ReadFile(localPath)
		require.NoError(t, err)
		assert.Equal(t, "pdf content", string(data))
	})

	t.Run("to stdout", func(t *testing.T) {
		srv := signServer(t)
		client := newClient(t, srv, clientcli.Config{})

		result, reader, err := client.Download(context.Background(), clientcli.DownloadOptions{
			Bucket:    "reports",
			Object:    "q1.pdf",
			LocalPath: "-",
		})
		require.NoError(t, err)
		require.NotNil(t, reader)
		defer func() { _ = reader.Close() }()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "pdf content", string(data))
		assert.Equal(t, "-", result.LocalPath)
	})

	t.Run("sign failure", func(t *testing.T) {
		srv := signServer(t)
		client := newClient(t, srv, clientcli.Config{Bucket: "reports"})

		_, _, err := client.Download(context.Background(), clientcli.DownloadOptions{Object: "missing.txt"})
		assert.ErrorIs(t, err, clientcli.ErrBackend)
	})

	t.Run("object fetch failure", func(t *testing.T) {
		srv := signServer(t)
		client := newClient(t, srv, clientcli.Config{Bucket: "reports"})

		_, _, err := client.Download(context.Background(), clientcli.DownloadOptions{
			Object:    "gone.pdf",
			LocalPath: filepath.Join(t.TempDir(), "gone.pdf"),
		})
		assert.ErrorIs(t, err, clientcli.ErrNotFound)
	})

	t.Run("interrupted body removes partial file", func(t *testing.T) {
		srv := signServer(t)
		client := newClient(t, srv, clientcli.Config{Bucket: "reports"})

		localPath := filepath.Join(t.TempDir(), "truncated.pdf")
		_, _, err := client.Download(context.Background(), clientcli.DownloadOptions{
			Object:    "truncated.pdf",
			LocalPath: localPath,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "write file")

		_, statErr := os.Stat(localPath)
		assert.ErrorIs(t, statErr, os.ErrNotExist)
	})

	t.Run("empty object", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Bucket: "reports"})
		require.NoError(t, err)

		_, _, err = client.Download(context.Background(), clientcli.DownloadOptions{})
		assert.ErrorIs(t, err, clientcli.ErrEmptyObject)
	})
}

func TestClient_Issuances(t *testing.T) {
	first := clientcli.Issuance{
		ID:        uuid.New(),
		RequestID: "req-2",
		Backend:   "gcs",
		Bucket:    "reports",
		Object:    "q2.pdf",
		Method:    "GET",
		IssuedAt:  expiresAt.Add(-time.Hour),
		ExpiresAt: expiresAt,
	}
	second := first
	second.ID = uuid.New()
	second.RequestID = "req-1"
	second.Object = "q1.pdf"

	t.Run("single page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/issuances", r.URL.Path)
			assert.Equal(t, "reports", r.URL.Query().Get("bucket"))
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			assert.Empty(t, r.URL.Query().Get("cursor"))

			_ = json.NewEncoder(w).Encode(clientcli.IssuanceList{Items: []clientcli.Issuance{first}, NextCursor: "next"})
		}))
		defer srv.Close()

		client := newClient(t, srv, clientcli.Config{})

		list, err := client.Issuances(context.Background(), clientcli.IssuanceOptions{Bucket: "reports"})
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, first.ID, list.Items[0].ID)
		assert.Equal(t, "next", list.NextCursor)
	})

	t.Run("all pages", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, "1000", r.URL.Query().Get("limit"))

			if r.URL.Query().Get("cursor") == "" {
				_ = json.NewEncoder(w).Encode(clientcli.IssuanceList{Items: []clientcli.Issuance{first}, NextCursor: "page-2"})
				return
			}
			assert.Equal(t, "page-2", r.URL.Query().Get("cursor"))
			_ = json.NewEncoder(w).Encode(clientcli.IssuanceList{Items: []clientcli.Issuance{second}})
		}))
		defer srv.Close()

		client := newClient(t, srv, clientcli.Config{})

		list, err := client.Issuances(context.Background(), clientcli.IssuanceOptions{Limit: 5000, All: true})
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
		require.Len(t, list.Items, 2)
		assert.Equal(t, "req-2", list.Items[0].RequestID)
		assert.Equal(t, "req-1", list.Items[1].RequestID)
		assert.Empty(t, list.NextCursor)
	})

	t.Run("ledger disabled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, "not_found", "Issuance ledger is not enabled")
		}))
		defer srv.Close()

		client := newClient(t, srv, clientcli.Config{})

		_, err := client.Issuances(context.Background(), clientcli.IssuanceOptions{})
		assert.ErrorIs(t, err, clientcli.ErrNotFound)

		var apiErr *clientcli.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsNotFound())
		assert.Equal(t, "not_found", apiErr.Code)
	})

	t.Run("cancelled context", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = client.Issuances(ctx, clientcli.IssuanceOptions{All: true})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	client := newClient(t, srv, clientcli.Config{})
	assert.NoError(t, client.Health(context.Background()))

	srv.Close()
	assert.Error(t, client.Health(context.Background()))
}

func TestAPIError(t *testing.T) {
	t.Run("plain body", func(t *testing.T) {
		err := &clientcli.APIError{StatusCode: http.StatusBadGateway, Body: "upstream down"}
		assert.EqualError(t, err, "server error: 502 - upstream down")
		assert.False(t, err.IsNotFound())
	})

	t.Run("status without code matches any code", func(t *testing.T) {
		err := &clientcli.APIError{StatusCode: http.StatusInternalServerError, Code: "internal_error"}
		assert.ErrorIs(t, err, &clientcli.APIError{StatusCode: http.StatusInternalServerError})
		assert.NotErrorIs(t, err, clientcli.ErrCredential)
		assert.NotErrorIs(t, err, clientcli.ErrBackend)
	})
}
