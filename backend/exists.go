package backend

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/sagarc03/signet"
)

// GCSObjectChecker looks up object metadata to confirm an object exists.
// Unlike signing, this makes a network call to the storage service.
type GCSObjectChecker struct {
	client *storage.Client
}

// NewGCSObjectChecker creates a checker. opts are passed through to the
// underlying GCS client, allowing credential and endpoint injection.
func NewGCSObjectChecker(ctx context.Context, opts ...option.ClientOption) (*GCSObjectChecker, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs checker: create client: %w", err)
	}
	return &GCSObjectChecker{client: client}, nil
}

// Exists implements signet.ObjectChecker.
func (c *GCSObjectChecker) Exists(ctx context.Context, ref signet.ObjectRef) error {
	if err := validateRef(ref); err != nil {
		return err
	}

	_, err := c.client.Bucket(ref.Bucket).Object(ref.Object).Attrs(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrObjectNotExist), errors.Is(err, storage.ErrBucketNotExist):
		return fmt.Errorf("gcs check %s: %w", ref, errors.Join(signet.ErrBackend, signet.ErrNotFound))
	default:
		return fmt.Errorf("gcs check %s: %w", ref, errors.Join(signet.ErrBackend, err))
	}
}

// Close releases the underlying client.
func (c *GCSObjectChecker) Close() error {
	return c.client.Close()
}
