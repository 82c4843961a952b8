package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sagarc03/signet"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// ErrorStatus maps err to an HTTP status, an error code, and a message that is
// safe to return to clients. Only field errors carry request-specific detail;
// every other message is fixed.
func ErrorStatus(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, signet.ErrInvalidRequest):
		var fieldErr *signet.FieldError
		if errors.As(err, &fieldErr) {
			return http.StatusBadRequest, "invalid_request", fieldErr.Error()
		}
		return http.StatusBadRequest, "invalid_request", "Invalid request"
	case errors.Is(err, signet.ErrCredential):
		return http.StatusInternalServerError, "credential_error", "Signing credentials are unavailable"
	case errors.Is(err, signet.ErrBackend):
		return http.StatusInternalServerError, "backend_error", "Storage backend could not sign the URL"
	default:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
}

// HandleError logs err with the request's logger and writes the matching
// error response. It returns the error code written.
func HandleError(w http.ResponseWriter, r *http.Request, err error) string {
	status, code, message := ErrorStatus(err)

	logger := LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request error", "code", code, "err", err)
	} else {
		logger.Info("request rejected", "code", code, "err", err)
	}

	WriteError(w, status, code, message)
	return code
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
