package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/sagarc03/signet"
	"github.com/sagarc03/signet/database/postgres"
	"github.com/sagarc03/signet/database/sqlite"
)

const (
	TypeNone     = "none"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// ErrDisabled is returned by Connect when the ledger type is "none" or unset.
var ErrDisabled = errors.New("issuance ledger disabled")

// Config holds the configuration for connecting to the ledger backend.
type Config struct {
	// Type is "none", "sqlite", or "postgres".
	Type string `mapstructure:"type" validate:"required,oneof=none sqlite postgres"`
	// DSN is the data source name (connection string).
	DSN    string        `mapstructure:"dsn" validate:"required_unless=Type none"`
	Tables signet.Tables `mapstructure:"tables"`
}

// Enabled reports whether a ledger backend is configured.
func (c Config) Enabled() bool {
	return c.Type != "" && c.Type != TypeNone
}

// Database is a ledger backend connection.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	GetRepo() signet.IssuanceRepo
	Close() error
}

// Connect opens the configured backend without touching its schema.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case TypeSQLite:
		return sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
	case TypePostgres:
		return postgres.Connect(ctx, cfg.DSN, cfg.Tables)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Open connects, migrates, and validates the schema, returning a ready
// database. The caller must Close it.
func Open(ctx context.Context, cfg Config) (Database, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Type, err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.Type, err)
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate %s schema: %w", cfg.Type, err)
	}

	return db, nil
}
