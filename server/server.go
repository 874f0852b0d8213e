package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wudi/riskmatrix/export"
	"github.com/wudi/riskmatrix/observability"
	"github.com/wudi/riskmatrix/risk"
)

const (
	RequestIDHeader     = "X-Request-ID"
	DefaultMaxBodyBytes = 1 << 20
)

// Exporter is the part of *export.Exporter the server needs.
type Exporter interface {
	Export(ctx context.Context, description string, risks []risk.Risk) ([]byte, error)
}

type Server struct {
	router       *chi.Mux
	exporter     Exporter
	logger       observability.Logger
	gatherer     prometheus.Gatherer
	filename     string
	maxBodyBytes int64
}

type Options func(*Server)

func WithLogger(l observability.Logger) Options { return func(s *Server) { s.logger = l } }

// WithGatherer exposes g on /metrics. Without it /metrics is not mounted.
func WithGatherer(g prometheus.Gatherer) Options { return func(s *Server) { s.gatherer = g } }

func WithFilename(name string) Options { return func(s *Server) { s.filename = name } }

func WithMaxBodyBytes(n int64) Options { return func(s *Server) { s.maxBodyBytes = n } }

func New(exp Exporter, opts ...Options) *Server {
	r := chi.NewRouter()
	s := &Server{
		router:       r,
		exporter:     exp,
		logger:       observability.NopLogger{},
		filename:     export.DefaultFilename,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(requestID)
	r.Use(s.accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/api/v1/risk", func(r chi.Router) {
		r.Post("/export", s.handleExport)
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type ctxKey struct{}

// RequestID returns the id assigned by the server middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestID keeps a caller supplied X-Request-ID or assigns a UUID, and
// echoes it on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (s *Server) accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("access",
				observability.String("request_id", RequestID(r.Context())),
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.Int("status", ww.Status()),
				observability.Int("bytes", ww.BytesWritten()),
				observability.Duration("duration", time.Since(start)),
				observability.String("remote", r.RemoteAddr),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, RequestID: RequestID(r.Context())})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	payload, err := risk.DecodePayload(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, risk.ErrInvalidPayload):
			s.writeError(w, r, http.StatusBadRequest, "invalid risk payload")
		default:
			s.writeError(w, r, http.StatusBadRequest, "could not read request body")
		}
		s.logger.Warn("rejected export request",
			observability.String("request_id", RequestID(r.Context())),
			observability.Error("error", err))
		return
	}

	pdf, err := s.exporter.Export(r.Context(), payload.Description, payload.Risks)
	if err != nil {
		if errors.Is(err, export.ErrEmptyRiskList) {
			s.writeError(w, r, http.StatusUnprocessableEntity, "no valid risks to export")
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, "export failed, try again")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
