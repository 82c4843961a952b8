package clientcli

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// DefaultEndpoint is the default server endpoint URL.
const DefaultEndpoint = "http://localhost:8080"

// Config holds resolved client configuration for a single server.
// This is what the Client uses after profile resolution.
type Config struct {
	Endpoint string
	Bucket   string
	Expires  int64
}

// Validate checks that the endpoint, if set, is an absolute http(s) URL.
// Use WithDefaults() to get a config with default values applied.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return nil
	}
	return ValidateEndpoint(c.Endpoint)
}

// ValidateEndpoint reports whether endpoint is an absolute http(s) URL.
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidEndpoint, endpoint)
	}
	return nil
}

// WithDefaults returns a copy of the config with default values applied.
// If Endpoint is empty, it defaults to DefaultEndpoint.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	return &cfg
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		Endpoint: p.Endpoint,
		Bucket:   p.Bucket,
		Expires:  p.Expires,
	}
}

// ConfigFromEnv loads config from environment variables.
// An unparsable SIGNET_EXPIRES is ignored.
func ConfigFromEnv() *Config {
	expires, _ := strconv.ParseInt(os.Getenv("SIGNET_EXPIRES"), 10, 64)
	return &Config{
		Endpoint: os.Getenv("SIGNET_ENDPOINT"),
		Bucket:   os.Getenv("SIGNET_BUCKET"),
		Expires:  expires,
	}
}

// ProfileFromEnv returns the profile name from SIGNET_PROFILE environment variable.
func ProfileFromEnv() string {
	return os.Getenv("SIGNET_PROFILE")
}

// ConfigPathFromEnv returns the config file path from SIGNET_CLI_CONFIG environment variable.
func ConfigPathFromEnv() string {
	return os.Getenv("SIGNET_CLI_CONFIG")
}

// MergeConfig merges multiple configs, with later configs taking precedence.
// Zero values in later configs do not override set values in earlier configs.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Endpoint != "" {
			result.Endpoint = cfg.Endpoint
		}
		if cfg.Bucket != "" {
			result.Bucket = cfg.Bucket
		}
		if cfg.Expires > 0 {
			result.Expires = cfg.Expires
		}
	}
	return result
}
