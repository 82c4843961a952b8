package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/oauth2/google"

	"github.com/sagarc03/signet"
)

// ServiceAccountFile loads a Google service account JSON key file.
type ServiceAccountFile struct {
	path string
}

// NewServiceAccountFile creates a provider for the key file at path.
func NewServiceAccountFile(path string) *ServiceAccountFile {
	return &ServiceAccountFile{path: path}
}

// Credential reads and parses the key file.
func (p *ServiceAccountFile) Credential(ctx context.Context) (signet.Credential, error) {
	if err := ctx.Err(); err != nil {
		return signet.Credential{}, err
	}

	data, err := os.ReadFile(p.path) //nolint:gosec // Path is from trusted config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return signet.Credential{}, fmt.Errorf("read service account file %s: not found: %w", p.path, signet.ErrCredential)
		}
		return signet.Credential{}, fmt.Errorf("read service account file %s: %w", p.path, errors.Join(signet.ErrCredential, err))
	}

	// The parse error from oauth2 can quote file content, so it is not wrapped.
	cfg, err := google.JWTConfigFromJSON(data)
	if err != nil {
		return signet.Credential{}, fmt.Errorf("parse service account file %s: %w", p.path, signet.ErrCredential)
	}

	if cfg.Email == "" || len(cfg.PrivateKey) == 0 {
		return signet.Credential{}, fmt.Errorf("parse service account file %s: missing client_email or private_key: %w", p.path, signet.ErrCredential)
	}

	return signet.Credential{
		Kind:       signet.CredentialServiceAccount,
		AccessID:   cfg.Email,
		PrivateKey: cfg.PrivateKey,
		Source:     p.path,
	}, nil
}
