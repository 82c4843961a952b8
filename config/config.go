package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/signet"
	"github.com/sagarc03/signet/database"
	signethttp "github.com/sagarc03/signet/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for signet.
type Config struct {
	Server      ServerConfig          `mapstructure:"server"`
	Signing     SigningConfig         `mapstructure:"signing"`
	Credentials CredentialsConfig     `mapstructure:"credentials"`
	GCS         GCSConfig             `mapstructure:"gcs"`
	S3          S3Config              `mapstructure:"s3"`
	Database    database.Config       `mapstructure:"database"`
	CORS        signethttp.CORSConfig `mapstructure:"cors"`
	Metrics     MetricsConfig         `mapstructure:"metrics"`
	Log         LogConfig             `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SigningConfig holds signing policy.
type SigningConfig struct {
	Backend                  string `mapstructure:"backend" validate:"required,oneof=gcs s3"`
	DefaultExpirationSeconds int64  `mapstructure:"default_expiration_seconds" validate:"min=1,max=604800"`
	MaxExpirationSeconds     int64  `mapstructure:"max_expiration_seconds" validate:"min=1,max=604800"`
	CheckExists              bool   `mapstructure:"check_exists"`
}

// ServiceConfig converts the signing policy into the service's configuration.
func (s SigningConfig) ServiceConfig() signet.ServiceConfig {
	return signet.ServiceConfig{
		Backend:           signet.Backend(s.Backend),
		DefaultExpiration: time.Duration(s.DefaultExpirationSeconds) * time.Second,
		MaxExpiration:     time.Duration(s.MaxExpirationSeconds) * time.Second,
	}
}

// CredentialsConfig locates the key material used for signing.
type CredentialsConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	// Profile selects the section of an AWS shared credentials file.
	Profile string `mapstructure:"profile"`
	Cache   bool   `mapstructure:"cache"`
}

// GCSConfig holds GCS URL options.
type GCSConfig struct {
	Style string `mapstructure:"style" validate:"required,oneof=path virtual"`
}

// S3Config holds S3 presigning options.
type S3Config struct {
	Region       string `mapstructure:"region" validate:"required"`
	Endpoint     string `mapstructure:"endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"host":        "server.host",
	"port":        "server.port",
	"backend":     "signing.backend",
	"credentials": "credentials.path",
	"db-type":     "database.type",
	"db-dsn":      "database.dsn",
	"log-level":   "log.level",
	"log-format":  "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
// Every key has a default so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("signing.backend", "gcs")
	v.SetDefault("signing.default_expiration_seconds", signet.DefaultExpirationSeconds)
	v.SetDefault("signing.max_expiration_seconds", signet.MaxExpirationSeconds)
	v.SetDefault("signing.check_exists", false)

	v.SetDefault("credentials.path", "/app/sa.json")
	v.SetDefault("credentials.profile", "default")
	v.SetDefault("credentials.cache", true)

	v.SetDefault("gcs.style", "path")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.use_path_style", false)

	v.SetDefault("database.type", database.TypeNone)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.tables.issuances", "signet_issuances")

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposed_headers", []string{"X-Request-ID"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SIGNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the rules that span sections.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if c.Signing.DefaultExpirationSeconds > c.Signing.MaxExpirationSeconds {
		return fmt.Errorf("validate config: signing.default_expiration_seconds (%d) exceeds signing.max_expiration_seconds (%d)",
			c.Signing.DefaultExpirationSeconds, c.Signing.MaxExpirationSeconds)
	}

	if c.Signing.CheckExists && c.Signing.Backend != string(signet.BackendGCS) {
		return errors.New("validate config: signing.check_exists is only supported with the gcs backend")
	}

	if c.Database.Enabled() {
		if err := c.Database.Tables.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}

	return nil
}
