package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/signet"
	"github.com/sagarc03/signet/metrics"
)

// Service issues signed URLs.
type Service interface {
	Sign(ctx context.Context, req signet.SignRequest) (signet.SignResult, error)
	Backend() signet.Backend
}

// IssuanceLister pages through the issuance ledger.
type IssuanceLister interface {
	List(ctx context.Context, q signet.IssuanceQuery) (signet.IssuanceList, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"min=0"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// RequestTimeout bounds each request's context. Zero disables it.
	RequestTimeout time.Duration
	// Issuances serves GET /issuances. Nil disables the endpoint.
	Issuances IssuanceLister
	// Metrics instruments requests and serves GET /metrics. Nil disables both.
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Handler provides HTTP handlers for URL signing.
type Handler struct {
	config  HandlerConfig
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		config:  *config,
		service: service,
		logger:  logger,
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(h.config.Metrics.Middleware)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	r.Get("/", handleLanding)
	r.Get("/healthz", handleHealth)
	if h.config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.config.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(Timeout(h.config.RequestTimeout))
		r.Post("/sign", h.handleSign)
		r.Get("/issuances", h.handleIssuances)
	})

	return r
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	backend := string(h.service.Backend())

	req, err := decodeSignRequest(w, r)
	if err != nil {
		h.config.Metrics.ObserveSign(backend, HandleError(w, r, err), time.Since(start))
		return
	}
	req.RequestID = RequestIDFromContext(r.Context())

	result, err := h.service.Sign(r.Context(), req)
	if err != nil {
		h.config.Metrics.ObserveSign(backend, HandleError(w, r, err), time.Since(start))
		return
	}

	h.config.Metrics.ObserveSign(backend, "ok", time.Since(start))

	w.Header().Set("Cache-Control", "no-store")
	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleIssuances(w http.ResponseWriter, r *http.Request) {
	if h.config.Issuances == nil {
		WriteError(w, http.StatusNotFound, "not_found", "Issuance ledger is not enabled")
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = max(1, min(1000, parsed))
		}
	}

	query := signet.IssuanceQuery{
		Bucket: r.URL.Query().Get("bucket"),
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}

	result, err := h.config.Issuances.List(r.Context(), query)
	if err != nil {
		if errors.Is(err, signet.ErrInvalidRequest) {
			WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid cursor")
			return
		}
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
