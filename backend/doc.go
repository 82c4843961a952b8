// Package backend implements signet.URLSigner for Google Cloud Storage and
// Amazon S3, plus an optional GCS existence check.
//
// Both signers compute URLs locally from the credential's key material; no
// request is made to the storage service while signing.
//
//	gcs := backend.NewGCSSigner(backend.GCSConfig{Style: backend.StylePath})
//	s3 := backend.NewS3Signer(backend.S3Config{Region: "us-east-1"})
//
// Malformed bucket or object names are rejected with signet.ErrBackend before
// any signing work is done.
package backend
