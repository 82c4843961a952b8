package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/signet"
	"github.com/sagarc03/signet/config"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Load with no config files should use defaults
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "gcs", cfg.Signing.Backend)
	assert.Equal(t, int64(3600), cfg.Signing.DefaultExpirationSeconds)
	assert.Equal(t, int64(604800), cfg.Signing.MaxExpirationSeconds)
	assert.False(t, cfg.Signing.CheckExists)
	assert.Equal(t, "/app/sa.json", cfg.Credentials.Path)
	assert.Equal(t, "default", cfg.Credentials.Profile)
	assert.True(t, cfg.Credentials.Cache)
	assert.Equal(t, "path", cfg.GCS.Style)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Empty(t, cfg.S3.Endpoint)
	assert.Equal(t, "none", cfg.Database.Type)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "signet_issuances", cfg.Database.Tables.Issuances)
	assert.False(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"X-Request-ID"}, cfg.CORS.ExposedHeaders)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
server:
  host: 127.0.0.1
  port: 9000
  request_timeout: 3s
signing:
  backend: s3
  default_expiration_seconds: 600
  max_expiration_seconds: 86400
credentials:
  path: /etc/signet/credentials
  profile: signer
  cache: false
s3:
  region: eu-west-1
  endpoint: https://storage.example.com
  use_path_style: true
database:
  type: postgres
  dsn: postgres://localhost/test
  tables:
    issuances: custom_issuances
metrics:
  enabled: false
log:
  level: debug
  format: json
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "s3", cfg.Signing.Backend)
	assert.Equal(t, int64(600), cfg.Signing.DefaultExpirationSeconds)
	assert.Equal(t, int64(86400), cfg.Signing.MaxExpirationSeconds)
	assert.Equal(t, "/etc/signet/credentials", cfg.Credentials.Path)
	assert.Equal(t, "signer", cfg.Credentials.Profile)
	assert.False(t, cfg.Credentials.Cache)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.Equal(t, "https://storage.example.com", cfg.S3.Endpoint)
	assert.True(t, cfg.S3.UsePathStyle)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://localhost/test", cfg.Database.DSN)
	assert.Equal(t, "custom_issuances", cfg.Database.Tables.Issuances)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	basePath := writeConfig(t, "base.yaml", `
server:
  port: 8080
signing:
  backend: gcs
  default_expiration_seconds: 3600
database:
  type: sqlite
  dsn: signet.db
log:
  level: info
`)

	overridePath := writeConfig(t, "override.yaml", `
server:
  port: 9000
signing:
  default_expiration_seconds: 900
`)

	// Load with merge (later files override earlier)
	cfg, err := config.Load([]string{basePath, overridePath}, nil)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, int64(900), cfg.Signing.DefaultExpirationSeconds)

	// Preserved values from base
	assert.Equal(t, "gcs", cfg.Signing.Backend)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "signet.db", cfg.Database.DSN)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid port",
			content: "server:\n  port: 99999\n",
			wantErr: "validate config",
		},
		{
			name:    "invalid backend",
			content: "signing:\n  backend: azure\n",
			wantErr: "validate config",
		},
		{
			name:    "expiration above v4 limit",
			content: "signing:\n  max_expiration_seconds: 604801\n",
			wantErr: "validate config",
		},
		{
			name:    "default exceeds max",
			content: "signing:\n  default_expiration_seconds: 7200\n  max_expiration_seconds: 3600\n",
			wantErr: "exceeds signing.max_expiration_seconds",
		},
		{
			name:    "check_exists with s3",
			content: "signing:\n  backend: s3\n  check_exists: true\n",
			wantErr: "only supported with the gcs backend",
		},
		{
			name:    "invalid gcs style",
			content: "gcs:\n  style: subdomain\n",
			wantErr: "validate config",
		},
		{
			name:    "invalid s3 endpoint",
			content: "s3:\n  endpoint: not a url\n",
			wantErr: "validate config",
		},
		{
			name:    "invalid database type",
			content: "database:\n  type: mysql\n",
			wantErr: "validate config",
		},
		{
			name:    "sqlite without dsn",
			content: "database:\n  type: sqlite\n",
			wantErr: "validate config",
		},
		{
			name:    "invalid table name",
			content: "database:\n  type: sqlite\n  dsn: signet.db\n  tables:\n    issuances: Bad-Name\n",
			wantErr: "invalid issuances table name",
		},
		{
			name:    "invalid log format",
			content: "log:\n  format: xml\n",
			wantErr: "validate config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, "config.yaml", tt.content)

			_, err := config.Load([]string{configPath}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_WithCORS(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
cors:
  enabled: true
  allowed_origins:
    - https://example.com
    - https://app.example.com
  allowed_methods:
    - POST
  allowed_headers:
    - Content-Type
  max_age: 600
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com", "https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"POST"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"Content-Type"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("SIGNET_SERVER_PORT", "9090")
	t.Setenv("SIGNET_SIGNING_BACKEND", "s3")
	t.Setenv("SIGNET_SIGNING_DEFAULT_EXPIRATION_SECONDS", "120")
	t.Setenv("SIGNET_DATABASE_TYPE", "sqlite")
	t.Setenv("SIGNET_DATABASE_DSN", "ledger.db")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Signing.Backend)
	assert.Equal(t, int64(120), cfg.Signing.DefaultExpirationSeconds)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "ledger.db", cfg.Database.DSN)
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv("SIGNET_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	flags.String("backend", "gcs", "")
	flags.String("credentials", "", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--port", "7000", "--credentials", "/tmp/key.json", "--log-level", "warn"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port, "flags take precedence over env")
	assert.Equal(t, "/tmp/key.json", cfg.Credentials.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "gcs", cfg.Signing.Backend, "unset flags do not override")
}

func TestSigningConfig_ServiceConfig(t *testing.T) {
	t.Parallel()

	sc := config.SigningConfig{
		Backend:                  "s3",
		DefaultExpirationSeconds: 600,
		MaxExpirationSeconds:     3600,
	}.ServiceConfig()

	assert.Equal(t, signet.BackendS3, sc.Backend)
	assert.Equal(t, 10*time.Minute, sc.DefaultExpiration)
	assert.Equal(t, time.Hour, sc.MaxExpiration)
}

func TestContext(t *testing.T) {
	t.Parallel()

	_, err := config.FromContext(context.Background())
	require.Error(t, err)

	cfg := &config.Config{}
	got, err := config.FromContext(config.WithContext(context.Background(), cfg))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
