// Package config provides configuration loading and validation for Signet.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SIGNET_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with SIGNET_ prefix:
//   - server.port → SIGNET_SERVER_PORT
//   - signing.backend → SIGNET_SIGNING_BACKEND
//   - credentials.path → SIGNET_CREDENTIALS_PATH
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: listen host and port, request and shutdown timeouts
//   - Signing: backend (gcs/s3), default and max expiration, existence check
//   - Credentials: key file path, AWS profile, process-wide cache
//   - GCS, S3: backend-specific URL options
//   - Database: issuance ledger type (none/sqlite/postgres), DSN, table names
//   - CORS: cross-origin resource sharing settings
//   - Metrics, Log: observability settings
//
// # Validation
//
// Configuration is validated using struct tags and cross-section rules:
//   - Port must be 1-65535
//   - Expirations must be 1-604800 seconds, default not above max
//   - check_exists requires the gcs backend
//   - Log level must be debug, info, warn, or error
package config
