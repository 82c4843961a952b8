package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"

	"github.com/sagarc03/signet"
	"github.com/sagarc03/signet/backend"
	"github.com/sagarc03/signet/config"
	"github.com/sagarc03/signet/credentials"
	"github.com/sagarc03/signet/database"
)

// components holds everything built from config that needs closing.
type components struct {
	service *signet.SignService
	ledger  signet.IssuanceRepo
	closers []func() error
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			slog.Warn("close component", "err", err)
		}
	}
}

func newCredentialProvider(cfg *config.Config) (signet.CredentialProvider, error) {
	var provider signet.CredentialProvider
	switch signet.Backend(cfg.Signing.Backend) {
	case signet.BackendGCS:
		provider = credentials.NewServiceAccountFile(cfg.Credentials.Path)
	case signet.BackendS3:
		provider = credentials.NewAWSSharedCredentialsFile(cfg.Credentials.Path, cfg.Credentials.Profile)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Signing.Backend)
	}

	if cfg.Credentials.Cache {
		provider = credentials.Cached(provider)
	}
	return provider, nil
}

func newURLSigner(cfg *config.Config) (signet.URLSigner, error) {
	switch signet.Backend(cfg.Signing.Backend) {
	case signet.BackendGCS:
		return backend.NewGCSSigner(backend.GCSConfig{Style: backend.URLStyle(cfg.GCS.Style)}), nil
	case signet.BackendS3:
		return backend.NewS3Signer(backend.S3Config{
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Signing.Backend)
	}
}

// openLedger returns a nil repo when the ledger is disabled.
func openLedger(ctx context.Context, cfg database.Config) (signet.IssuanceRepo, func() error, error) {
	db, err := database.Open(ctx, cfg)
	if errors.Is(err, database.ErrDisabled) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open issuance ledger: %w", err)
	}

	slog.Info("connected to issuance ledger", "type", cfg.Type, "table", cfg.Tables.Issuances)
	return db.GetRepo(), db.Close, nil
}

func buildComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*components, error) {
	c := &components{}

	provider, err := newCredentialProvider(cfg)
	if err != nil {
		return nil, err
	}

	signer, err := newURLSigner(cfg)
	if err != nil {
		return nil, err
	}

	opts := []signet.ServiceOption{signet.WithLogger(logger)}

	if cfg.Signing.CheckExists {
		checker, err := backend.NewGCSObjectChecker(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.Credentials.Path))
		if err != nil {
			return nil, fmt.Errorf("create object checker: %w", err)
		}
		c.closers = append(c.closers, checker.Close)
		opts = append(opts, signet.WithObjectChecker(checker))
	}

	ledger, closeLedger, err := openLedger(ctx, cfg.Database)
	if err != nil {
		c.Close()
		return nil, err
	}
	if ledger != nil {
		c.ledger = ledger
		c.closers = append(c.closers, closeLedger)
		opts = append(opts, signet.WithIssuanceRepo(ledger))
	}

	service, err := signet.NewSignService(provider, signer, cfg.Signing.ServiceConfig(), opts...)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}
	c.service = service

	return c, nil
}
