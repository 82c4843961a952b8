package signet

import "errors"

var (
	// ErrInvalidRequest is returned when a signing request fails validation
	ErrInvalidRequest = errors.New("invalid request")
	// ErrCredential is returned when signing credentials are missing, unreadable, or malformed
	ErrCredential = errors.New("credential error")
	// ErrBackend is returned when the storage backend rejects the object reference or signing call
	ErrBackend = errors.New("backend error")
	// ErrInternal is returned when an unexpected error occurs
	ErrInternal = errors.New("internal error")
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
)

// FieldError reports a rejected request field. It matches ErrInvalidRequest
// with errors.Is, and its message is safe to return to clients.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidRequest
}
