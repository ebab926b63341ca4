package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/codereview/internal/application/analysis"
	"github.com/bryanwahyu/codereview/internal/domain/ai"
	domain "github.com/bryanwahyu/codereview/internal/domain/analysis"
	"github.com/bryanwahyu/codereview/internal/middleware"
)

// AnalysisService is what the router needs from the application layer.
type AnalysisService interface {
	AnalyzeAndStore(ctx context.Context, req domain.Request, ownerID string) (*domain.Result, error)
	Get(ctx context.Context, id, ownerID string) (*domain.Result, error)
	List(ctx context.Context, ownerID string, page, pageSize int) (appanalysis.Page, error)
}

// Options wires the router's collaborators. Zero values disable the optional
// parts: no CORS without origins, no rate limit without a Limiter.
type Options struct {
	Service        AnalysisService
	Logger         *zap.Logger
	Metrics        *middleware.Metrics
	Limiter        *middleware.RateLimiter
	APIKeys        map[string]string
	AllowedOrigins []string
	MaxBodyBytes   int64
	HealthCheckers map[string]middleware.HealthChecker
}

type Router struct {
	svc          AnalysisService
	log          *zap.Logger
	metrics      *middleware.Metrics
	maxBodyBytes int64
}

// errNotFound maps to 404.
var errNotFound = errors.New("analysis not found")

func NewRouter(opts Options) http.Handler {
	r := &Router{
		svc:          opts.Service,
		log:          opts.Logger,
		metrics:      opts.Metrics,
		maxBodyBytes: opts.MaxBodyBytes,
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.metrics == nil {
		r.metrics = middleware.NewMetrics()
	}
	if r.maxBodyBytes <= 0 {
		r.maxBodyBytes = 1 << 20
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Logging(r.log))
	mux.Use(r.metrics.Middleware)
	if len(opts.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", r.metrics.Handler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))

		analyze := rt.With()
		if opts.Limiter != nil {
			analyze = rt.With(opts.Limiter.Middleware)
		}
		analyze.Post("/analyze", r.wrap(r.handleAnalyze))

		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status, kind, msg := classify(err)
		if status >= 500 {
			r.log.Error("request failed", zap.String("path", req.URL.Path), zap.String("kind", kind), zap.Error(err))
		}
		middleware.WriteError(w, status, msg, kind)
	}
}

// classify maps an error to status code, kind and client message.
func classify(err error) (int, string, string) {
	var (
		maxBytes *http.MaxBytesError
		norm     *domain.NormalizationError
	)
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "request_too_large", fmt.Sprintf("request body exceeds %d bytes", maxBytes.Limit)
	case domain.IsValidation(err):
		return http.StatusBadRequest, "validation_error", err.Error()
	case errors.Is(err, errNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, ai.ErrMissingCredential):
		return http.StatusServiceUnavailable, "configuration_error", "analysis is not configured on this server"
	case errors.Is(err, ai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "rate_limited", err.Error()
	case ai.IsModelError(err):
		return http.StatusBadGateway, "model_error", err.Error()
	case errors.As(err, &norm):
		return http.StatusBadGateway, "normalization_error", err.Error()
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

// POST /v1/analyze
// Body: {"code": "...", "language": "go", "filename": "main.go"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxBodyBytes)

	var body domain.Request
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return &domain.ValidationError{Reason: "request body is empty"}
		}
		return &domain.ValidationError{Field: "body", Reason: "is not valid JSON: " + err.Error()}
	}
	body.Filename = middleware.SanitizeFilename(body.Filename)

	owner := middleware.GetOwnerFromContext(req.Context())
	res, err := r.svc.AnalyzeAndStore(req.Context(), body, owner)
	if res != nil {
		r.metrics.RecordAnalysis(len(res.Issues), err)
	} else {
		r.metrics.RecordAnalysis(0, err)
	}
	if err != nil {
		return err
	}

	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return &domain.ValidationError{Field: "id", Reason: err.Error()}
	}

	res, err := r.svc.Get(req.Context(), id, middleware.GetOwnerFromContext(req.Context()))
	if err != nil {
		return err
	}
	if res == nil {
		return errNotFound
	}

	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// GET /v1/analyses?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	page, err := queryInt(req, "page")
	if err != nil {
		return err
	}
	size, err := queryInt(req, "page_size")
	if err != nil {
		return err
	}

	out, err := r.svc.List(req.Context(), middleware.GetOwnerFromContext(req.Context()),
		middleware.ValidatePage(page), middleware.ValidateLimit(size))
	if err != nil {
		return err
	}

	middleware.WriteJSON(w, http.StatusOK, out)
	return nil
}

// queryInt returns 0 for a missing parameter.
func queryInt(req *http.Request, name string) (int, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Reason: "must be an integer"}
	}
	return n, nil
}
