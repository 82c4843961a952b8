// Package http exposes the signing service over HTTP.
//
// # Routes
//
//	POST /sign        issue a signed URL
//	GET  /            static landing page
//	GET  /healthz     liveness check
//	GET  /issuances   page through the issuance ledger (when configured)
//	GET  /metrics     Prometheus exposition (when configured)
//
// # Sign requests
//
// The body is a JSON object. Both the flat shape and the nested shape used by
// older clients are accepted; flat fields win when both are present:
//
//	{"bucket_name": "reports", "object_name": "q1.pdf", "expiration_seconds": 600}
//	{"bucket_name": "reports", "blob_name": {"resolved": "q1.pdf"}, "expiration": 600}
//
// A successful response carries the URL, its absolute expiry, and the method
// it is valid for:
//
//	{"url": "https://...", "expires_at": "2024-03-01T12:10:00Z", "method": "GET"}
//
// # Errors
//
// Failures are JSON objects with a stable code and a message:
//
//	{"error": "invalid_request", "message": "bucket_name is required"}
//
// invalid_request maps to 400. credential_error, backend_error, and
// internal_error map to 500 and carry fixed messages; the underlying error is
// only logged.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    RequestTimeout: 10 * time.Second,
//	    Metrics:        metrics.New(),
//	    Logger:         logger,
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":8080", handler.Router())
//
// Every response carries an X-Request-ID header, echoed from the request when
// the caller supplies a short printable id.
package http
