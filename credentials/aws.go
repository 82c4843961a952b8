package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/sagarc03/signet"
)

// DefaultProfile is the shared credentials profile used when none is given.
const DefaultProfile = "default"

// AWSSharedCredentialsFile loads an access key pair from an AWS shared
// credentials file (INI format). Environment variables and the shared config
// file are not consulted.
type AWSSharedCredentialsFile struct {
	path    string
	profile string
}

// NewAWSSharedCredentialsFile creates a provider for profile in the file at path.
func NewAWSSharedCredentialsFile(path, profile string) *AWSSharedCredentialsFile {
	if profile == "" {
		profile = DefaultProfile
	}
	return &AWSSharedCredentialsFile{path: path, profile: profile}
}

// Credential reads the profile from the credentials file.
func (p *AWSSharedCredentialsFile) Credential(ctx context.Context) (signet.Credential, error) {
	if err := ctx.Err(); err != nil {
		return signet.Credential{}, err
	}

	if _, err := os.Stat(p.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return signet.Credential{}, fmt.Errorf("read credentials file %s: not found: %w", p.path, signet.ErrCredential)
		}
		return signet.Credential{}, fmt.Errorf("read credentials file %s: %w", p.path, errors.Join(signet.ErrCredential, err))
	}

	shared, err := config.LoadSharedConfigProfile(ctx, p.profile, func(o *config.LoadSharedConfigOptions) {
		o.CredentialsFiles = []string{p.path}
		o.ConfigFiles = []string{}
	})
	if err != nil {
		return signet.Credential{}, fmt.Errorf("load profile %q from %s: %w", p.profile, p.path, signet.ErrCredential)
	}

	creds := shared.Credentials
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return signet.Credential{}, fmt.Errorf("load profile %q from %s: missing access key pair: %w", p.profile, p.path, signet.ErrCredential)
	}

	return signet.Credential{
		Kind:         signet.CredentialAccessKey,
		AccessID:     creds.AccessKeyID,
		SecretKey:    creds.SecretAccessKey,
		SessionToken: creds.SessionToken,
		Source:       p.path,
	}, nil
}
