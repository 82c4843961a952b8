package signet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ServiceConfig holds configuration options for SignService.
type ServiceConfig struct {
	Backend           Backend
	DefaultExpiration time.Duration // Used when a request omits its expiration (default: 1h)
	MaxExpiration     time.Duration // Upper bound on requested expirations (default: 7 days)
}

// ServiceOption customizes a SignService.
type ServiceOption func(*SignService)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *SignService) {
		s.logger = logger
	}
}

// WithIssuanceRepo enables the issuance ledger.
func WithIssuanceRepo(repo IssuanceRepo) ServiceOption {
	return func(s *SignService) {
		s.ledger = repo
	}
}

// WithObjectChecker enables an existence check before signing.
func WithObjectChecker(checker ObjectChecker) ServiceOption {
	return func(s *SignService) {
		s.checker = checker
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *SignService) {
		s.now = now
	}
}

type SignService struct {
	credentials       CredentialProvider
	signer            URLSigner
	backend           Backend
	defaultExpiration time.Duration
	maxExpiration     time.Duration

	checker  ObjectChecker
	ledger   IssuanceRepo
	logger   *slog.Logger
	now      func() time.Time
	validate *validator.Validate
}

func NewSignService(credentials CredentialProvider, signer URLSigner, cfg ServiceConfig, opts ...ServiceOption) (*SignService, error) {
	if credentials == nil {
		return nil, errors.New("new sign service: credential provider is required")
	}
	if signer == nil {
		return nil, errors.New("new sign service: url signer is required")
	}
	if !cfg.Backend.IsValid() {
		return nil, fmt.Errorf("new sign service: invalid backend: %s", cfg.Backend)
	}

	defaultExpiration := cfg.DefaultExpiration
	if defaultExpiration <= 0 {
		defaultExpiration = DefaultExpirationSeconds * time.Second
	}
	maxExpiration := cfg.MaxExpiration
	if maxExpiration <= 0 {
		maxExpiration = MaxExpirationSeconds * time.Second
	}
	if defaultExpiration > maxExpiration {
		return nil, fmt.Errorf("new sign service: default expiration %s exceeds max %s", defaultExpiration, maxExpiration)
	}

	s := &SignService{
		credentials:       credentials,
		signer:            signer,
		backend:           cfg.Backend,
		defaultExpiration: defaultExpiration,
		maxExpiration:     maxExpiration,
		logger:            slog.Default(),
		now:               time.Now,
		validate:          newRequestValidator(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Backend returns the backend this service signs for.
func (s *SignService) Backend() Backend {
	return s.backend
}

// Issuances returns the ledger, or nil when none is configured.
func (s *SignService) Issuances() IssuanceRepo {
	return s.ledger
}

// Sign issues a GET-only signed URL for the requested object.
//
// The method performs the following steps:
//  1. Validates bucket, object, and expiration
//  2. Loads credentials from the provider
//  3. Optionally checks that the object exists
//  4. Signs the URL with the resolved validity window
//  5. Records the issuance in the ledger, if one is configured
//
// Error types returned:
//   - ErrInvalidRequest: missing bucket or object, or expiration out of range
//   - ErrCredential: credentials could not be loaded
//   - ErrBackend: the object reference was rejected or signing failed
//   - ErrInternal: the context ended or an unclassified failure occurred
//
// No signed URL is ever returned alongside an error.
func (s *SignService) Sign(ctx context.Context, req SignRequest) (SignResult, error) {
	expiry, err := s.Validate(req)
	if err != nil {
		return SignResult{}, err
	}

	logger := s.logger.With(
		"request_id", req.RequestID,
		"backend", s.backend,
		"bucket", req.Bucket,
		"object", req.Object,
	)
	logger.Info("sign request received", "expiration_seconds", int64(expiry/time.Second))

	if err := checkContext(ctx, "load credentials"); err != nil {
		return SignResult{}, err
	}

	cred, err := s.credentials.Credential(ctx)
	if err != nil {
		logger.Error("credential load failed", "err", err)
		return SignResult{}, classify("load credentials", err, ErrCredential)
	}

	ref := ObjectRef{Bucket: req.Bucket, Object: req.Object}

	if s.checker != nil {
		if err := s.checker.Exists(ctx, ref); err != nil {
			logger.Error("object check failed", "err", err)
			return SignResult{}, classify("check object", err, ErrBackend)
		}
	}

	if err := checkContext(ctx, "sign url"); err != nil {
		return SignResult{}, err
	}

	issuedAt := s.now().UTC()
	signed, err := s.signer.SignURL(ctx, cred, ref, SignOptions{
		Method:   SignMethod,
		Expiry:   expiry,
		IssuedAt: issuedAt,
	})
	if err != nil {
		logger.Error("url signing failed", "credential", cred, "err", err)
		return SignResult{}, classify("sign url", err, ErrBackend)
	}

	// The URL is authoritative: its signed date is truncated to the second.
	expiresAt := issuedAt.Add(expiry)
	if signedAt, urlExpiry, ok := SignedWindow(signed); ok {
		issuedAt, expiresAt = signedAt, urlExpiry
	}
	logger.Info("signed url issued", "url", RedactURL(signed), "expires_at", expiresAt)

	s.record(ctx, logger, Issuance{
		ID:        uuid.New(),
		RequestID: req.RequestID,
		Backend:   s.backend,
		Bucket:    req.Bucket,
		Object:    req.Object,
		Method:    SignMethod,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	})

	return SignResult{
		URL:       signed,
		ExpiresAt: expiresAt,
		Method:    SignMethod,
	}, nil
}

// Validate checks req and returns the validity window it resolves to.
// Field failures are returned as *FieldError; all failures match
// ErrInvalidRequest.
func (s *SignService) Validate(req SignRequest) (time.Duration, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return 0, &FieldError{Field: verrs[0].Field(), Reason: "is required"}
		}
		return 0, fmt.Errorf("validate request: %w", ErrInvalidRequest)
	}

	if strings.TrimSpace(req.Bucket) == "" {
		return 0, &FieldError{Field: "bucket_name", Reason: "is required"}
	}
	if strings.TrimSpace(req.Object) == "" {
		return 0, &FieldError{Field: "object_name", Reason: "is required"}
	}

	if req.Expiration == nil {
		return s.defaultExpiration, nil
	}

	seconds := *req.Expiration
	if seconds <= 0 {
		return 0, &FieldError{Field: "expiration_seconds", Reason: "must be a positive integer"}
	}

	maxSeconds := int64(s.maxExpiration / time.Second)
	if seconds > maxSeconds {
		return 0, &FieldError{Field: "expiration_seconds", Reason: fmt.Sprintf("must not exceed %d", maxSeconds)}
	}

	return time.Duration(seconds) * time.Second, nil
}

func (s *SignService) record(ctx context.Context, logger *slog.Logger, issuance Issuance) {
	if s.ledger == nil {
		return
	}

	// The URL has already been signed; a ledger outage must not withhold it.
	if err := s.ledger.Record(context.WithoutCancel(ctx), issuance); err != nil {
		logger.Warn("issuance ledger write failed", "issuance_id", issuance.ID, "err", err)
	}
}

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func checkContext(ctx context.Context, step string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", step, errors.Join(ErrInternal, err))
	}
	return nil
}

// classify wraps err for step, adding fallback unless err already carries one
// of the taxonomy sentinels. Context errors always classify as ErrInternal.
func classify(step string, err error, fallback error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", step, errors.Join(ErrInternal, err))
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrCredential),
		errors.Is(err, ErrBackend), errors.Is(err, ErrInternal):
		return fmt.Errorf("%s: %w", step, err)
	default:
		return fmt.Errorf("%s: %w", step, errors.Join(fallback, err))
	}
}
