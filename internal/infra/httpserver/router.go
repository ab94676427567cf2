package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appreports "github.com/bryanwahyu/rxscan/internal/application/reports"
	domai "github.com/bryanwahyu/rxscan/internal/domain/ai"
	domain "github.com/bryanwahyu/rxscan/internal/domain/reports"
	"github.com/bryanwahyu/rxscan/internal/middleware"
	"github.com/bryanwahyu/rxscan/internal/web/client"
	"github.com/bryanwahyu/rxscan/internal/web/page"
)

// User-facing upload errors.
const (
	msgMissingField     = "No se encontró ningún archivo"
	msgEmptyFilename    = "No se seleccionó ningún archivo"
	msgCatalogUnloaded  = "No se pudo procesar el archivo o la base de datos no está cargada."
	msgInternalPrefix   = "Error interno del servidor: "
	msgQuotaExceeded    = "Se superó la cuota del servicio de IA. Intenta de nuevo más tarde."
	msgTimeout          = "El análisis tardó demasiado. Intenta de nuevo."
	defaultMaxUploadLen = 10 << 20
)

// Options carries the optional collaborators of the router.
type Options struct {
	Logger         *slog.Logger
	Metrics        *middleware.Metrics
	RateLimiter    *middleware.RateLimiter
	Health         map[string]middleware.HealthChecker
	Ready          map[string]middleware.HealthChecker
	AllowedOrigins []string
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

type Router struct {
	reportsSvc *appreports.Service
	logger     *slog.Logger
	maxUpload  int64
}

func NewRouter(reportsSvc *appreports.Service, opts Options) http.Handler {
	r := &Router{reportsSvc: reportsSvc, logger: opts.Logger, maxUpload: opts.MaxUploadBytes}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.maxUpload <= 0 {
		r.maxUpload = defaultMaxUploadLen
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(r.logger))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.Health))
	mux.Get("/ready", middleware.ReadinessHandler(opts.Ready))
	mux.Get("/live", middleware.LivenessHandler)
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	mux.Get("/", r.handleIndex)
	mux.Get("/static/style.css", r.handleStylesheet)

	mux.Group(func(rt chi.Router) {
		if opts.RateLimiter != nil {
			rt.Use(opts.RateLimiter.Middleware)
		}
		if opts.RequestTimeout > 0 {
			rt.Use(middleware.Deadline(opts.RequestTimeout))
		}
		rt.Post("/upload", r.wrap(r.handleUpload))
		rt.Post("/report", r.handleReport)
	})

	mux.Get("/v1/failures", r.wrap(r.handleFailures))

	return mux
}

// httpError carries a status and a message meant for the end user.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(msg string) error { return &httpError{status: http.StatusBadRequest, msg: msg} }

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			he := toHTTPError(err)
			if he.status >= http.StatusInternalServerError {
				r.logger.Error("request failed", "path", req.URL.Path, "error", err)
			}
			writeJSON(w, he.status, map[string]string{"error": he.msg})
		}
	}
}

// toHTTPError maps service and validation errors onto statuses and messages.
func toHTTPError(err error) *httpError {
	var he *httpError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, middleware.ErrNotImage),
		errors.Is(err, middleware.ErrFileTooLarge),
		errors.Is(err, middleware.ErrEmptyFile):
		return &httpError{status: http.StatusBadRequest, msg: err.Error()}
	case errors.Is(err, domain.ErrCatalogUnavailable):
		return &httpError{status: http.StatusInternalServerError, msg: msgCatalogUnloaded}
	case errors.Is(err, domai.ErrQuotaExceeded):
		return &httpError{status: http.StatusTooManyRequests, msg: msgQuotaExceeded}
	case errors.Is(err, context.DeadlineExceeded):
		return &httpError{status: http.StatusGatewayTimeout, msg: msgTimeout}
	}
	return &httpError{status: http.StatusInternalServerError, msg: msgInternalPrefix + err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// readUpload extracts the single image field of a multipart form.
func (r *Router) readUpload(w http.ResponseWriter, req *http.Request) (domain.Upload, error) {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload+1<<20)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return domain.Upload{}, middleware.ErrFileTooLarge
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return domain.Upload{}, badRequest(msgMissingField)
		}
	}
	f, hdr, err := req.FormFile(client.FieldName)
	if err != nil {
		return domain.Upload{}, badRequest(msgMissingField)
	}
	defer f.Close()
	if hdr.Filename == "" {
		return domain.Upload{}, badRequest(msgEmptyFilename)
	}
	return readPart(f, hdr, r.maxUpload)
}

func readPart(f multipart.File, hdr *multipart.FileHeader, max int64) (domain.Upload, error) {
	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return domain.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	ct, err := middleware.ValidateImageUpload(data, max)
	if err != nil {
		return domain.Upload{}, err
	}
	return domain.Upload{
		Filename:    middleware.SanitizeString(hdr.Filename),
		ContentType: ct,
		Data:        data,
	}, nil
}

// POST /upload (multipart, field "file")
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	up, err := r.readUpload(w, req)
	if err != nil {
		return err
	}
	report, err := r.reportsSvc.Analyze(req.Context(), up)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, report)
}

// GET /v1/failures?limit=20
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.reportsSvc.RecentFailures(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, page.IndexHTML())
}

func (r *Router) handleStylesheet(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(page.Stylesheet)
}
