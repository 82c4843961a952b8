// Package signet issues time-limited signed URLs for objects held in a storage
// backend, so callers can read an object without holding backend credentials.
//
// The signing flow is validate → load credentials → sign → respond. Each call
// is independent; the only shared state is an optional process-wide
// credential cache.
//
// # Key Components
//
//   - SignService: validates requests and drives the signing flow
//   - CredentialProvider: loads key material from a trusted location
//   - URLSigner: backend-specific URL signing (GCS V4, S3 presign)
//   - ObjectChecker: optional existence check before signing
//   - IssuanceRepo: optional audit ledger of issued URLs (never the URL itself)
//
// # Errors
//
// Every failure returned by SignService.Sign wraps exactly one of
// ErrInvalidRequest, ErrCredential, ErrBackend, or ErrInternal.
//
// # Example Usage
//
//	creds := credentials.Cached(credentials.NewServiceAccountFile("/app/sa.json"))
//	signer := backend.NewGCSSigner(backend.GCSConfig{Style: backend.StylePath})
//
//	service, err := signet.NewSignService(creds, signer, signet.ServiceConfig{
//	    Backend:           signet.BackendGCS,
//	    DefaultExpiration: time.Hour,
//	    MaxExpiration:     7 * 24 * time.Hour,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := service.Sign(ctx, signet.SignRequest{Bucket: "reports", Object: "q1.pdf"})
//
// See the http package for the REST API and the database package for the
// issuance ledger backends.
package signet
