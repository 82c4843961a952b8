package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sagarc03/signet"
)

const maxRequestBodyBytes = 64 << 10

// signRequestBody accepts both the flat request shape and the nested shape
// older clients send:
//
//	{"bucket_name": "b", "object_name": "o", "expiration_seconds": 600}
//	{"bucket_name": "b", "blob_name": {"resolved": "o"}, "expiration": 600}
//
// When both are present the flat fields win.
type signRequestBody struct {
	BucketName        string          `json:"bucket_name"`
	ObjectName        string          `json:"object_name"`
	BlobName          json.RawMessage `json:"blob_name"`
	ExpirationSeconds json.RawMessage `json:"expiration_seconds"`
	Expiration        json.RawMessage `json:"expiration"`
}

type blobName struct {
	Resolved string `json:"resolved"`
}

func decodeSignRequest(w http.ResponseWriter, r *http.Request) (signet.SignRequest, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return signet.SignRequest{}, &signet.FieldError{Field: "body", Reason: fmt.Sprintf("must not exceed %d bytes", tooLarge.Limit)}
		}
		return signet.SignRequest{}, fmt.Errorf("read request body: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return signet.SignRequest{}, &signet.FieldError{Field: "body", Reason: "is required"}
	}

	var body signRequestBody
	if err := json.Unmarshal(data, &body); err != nil {
		return signet.SignRequest{}, &signet.FieldError{Field: "body", Reason: "must be a JSON object"}
	}

	req := signet.SignRequest{
		Bucket: body.BucketName,
		Object: body.ObjectName,
	}

	if req.Object == "" {
		req.Object, err = resolveBlobName(body.BlobName)
		if err != nil {
			return signet.SignRequest{}, err
		}
	}

	req.Expiration, err = parseSeconds("expiration_seconds", body.ExpirationSeconds)
	if err != nil {
		return signet.SignRequest{}, err
	}
	if req.Expiration == nil {
		req.Expiration, err = parseSeconds("expiration", body.Expiration)
		if err != nil {
			return signet.SignRequest{}, err
		}
	}

	return req, nil
}

// resolveBlobName reads the legacy blob_name field, which is either an
// object with a "resolved" key or a plain string.
func resolveBlobName(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil
	}

	var nested blobName
	if err := json.Unmarshal(raw, &nested); err != nil {
		return "", &signet.FieldError{Field: "blob_name", Reason: `must be an object with a "resolved" key`}
	}
	return nested.Resolved, nil
}

// parseSeconds accepts a JSON integer. Strings, fractions, and exponents are
// rejected so that "600" and 600.5 are not silently coerced.
func parseSeconds(field string, raw json.RawMessage) (*int64, error) {
	if isNull(raw) {
		return nil, nil
	}

	invalid := &signet.FieldError{Field: field, Reason: "must be a positive integer"}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, invalid
	}

	n, ok := v.(json.Number)
	if !ok {
		return nil, invalid
	}

	seconds, err := n.Int64()
	if err != nil {
		return nil, invalid
	}
	return &seconds, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
