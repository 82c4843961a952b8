package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrConfigRequired  = errors.New("config is required")
	ErrInvalidEndpoint = errors.New("endpoint must be an http:// or https:// URL")
)

// Errors for input validation.
var (
	ErrNoObjects      = errors.New("no objects provided")
	ErrEmptyObject    = errors.New("object name is required")
	ErrBucketRequired = errors.New("bucket is required")
)
