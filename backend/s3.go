package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sagarc03/signet"
)

type S3Config struct {
	Region string
	// Endpoint overrides the S3 endpoint, e.g. for S3-compatible stores.
	Endpoint     string
	UsePathStyle bool
}

// S3Signer presigns GetObject requests with an access key pair.
type S3Signer struct {
	cfg S3Config
}

func NewS3Signer(cfg S3Config) *S3Signer {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return &S3Signer{cfg: cfg}
}

// SignURL implements signet.URLSigner. Only GET is supported.
func (s *S3Signer) SignURL(ctx context.Context, cred signet.Credential, ref signet.ObjectRef, opts signet.SignOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := validateRef(ref); err != nil {
		return "", err
	}

	if opts.Method != http.MethodGet {
		return "", fmt.Errorf("s3 sign: unsupported method %s: %w", opts.Method, signet.ErrBackend)
	}

	if cred.Kind != signet.CredentialAccessKey {
		return "", fmt.Errorf("s3 sign: unsupported credential kind %q: %w", cred.Kind, signet.ErrCredential)
	}

	client := s3.New(s3.Options{
		Region:       s.cfg.Region,
		Credentials:  awscredentials.NewStaticCredentialsProvider(cred.AccessID, cred.SecretKey, cred.SessionToken),
		UsePathStyle: s.cfg.UsePathStyle,
		BaseEndpoint: endpoint(s.cfg.Endpoint),
	})

	presigner := s3.NewPresignClient(client)

	req, err := presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(ref.Bucket),
			Key:    aws.String(ref.Object),
		},
		s3.WithPresignExpires(opts.Expiry),
	)
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", ref, errors.Join(signet.ErrBackend, err))
	}

	return req.URL, nil
}

func endpoint(raw string) *string {
	if raw == "" {
		return nil
	}
	return aws.String(raw)
}
