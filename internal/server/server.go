// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET  /health                      liveness probe
//	POST /render                      document in, image/png out
//	POST /render?format=json          {"image": ...} wrapper
//	POST /render?format=geojson       drawn geometry as GeoJSON
//
// /render also accepts supersample and encoding query parameters. Every
// response carries an X-Request-Id header.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/trafficmap/pkg/errors"
	"github.com/matzehuels/trafficmap/pkg/graph"
	tio "github.com/matzehuels/trafficmap/pkg/io"
	"github.com/matzehuels/trafficmap/pkg/pipeline"
)

const (
	// RequestIDHeader carries the per-request id.
	RequestIDHeader = "X-Request-Id"

	maxBodyBytes    = 32 << 20
	shutdownTimeout = 10 * time.Second
)

// Output formats for /render.
const (
	FormatPNG     = "png"
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
)

// Renderer renders a decoded document. *pipeline.Runner implements it.
type Renderer interface {
	Render(ctx context.Context, doc *graph.Document, opts pipeline.Options) (*pipeline.Result, error)
}

// Server is the HTTP render service.
type Server struct {
	renderer Renderer
	logger   *log.Logger
	defaults pipeline.Options
}

// New returns a server rendering with r. defaults fills options the request
// does not set.
func New(r Renderer, logger *log.Logger, defaults pipeline.Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{renderer: r, logger: logger.WithPrefix("server"), defaults: defaults}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"service":"trafficmap"}`))
	})
	r.Post("/render", s.handleRender)
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = FormatPNG
	}
	if err := errors.ValidateChoice("format", format, FormatPNG, FormatJSON, FormatGeoJSON); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.defaults
	if v := q.Get("supersample"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "supersample"))
			return
		}
		opts.Supersample = n
	}
	if v := q.Get("encoding"); v != "" {
		opts.ImageEncoding = v
	}
	opts.GeoJSON = format == FormatGeoJSON
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

	doc, err := tio.ReadDocument(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.renderer.Render(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch format {
	case FormatJSON:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(result.JSON)
	case FormatGeoJSON:
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(result.GeoJSON)
	default:
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(result.PNG)))
		_, _ = w.Write(result.PNG)
	}
}

type errorResponse struct {
	Error     string      `json:"error"`
	Code      errors.Code `json:"code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("render failed", "request_id", RequestID(r.Context()), "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:     errors.UserMessage(err),
		Code:      errors.GetCode(err),
		RequestID: RequestID(r.Context()),
	})
}

// StatusFor maps an error to an HTTP status: bad input is 400, basemap
// failures are 502 and everything else is 500.
func StatusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.IsClientError(err):
		return http.StatusBadRequest
	case errors.IsUpstreamError(err):
		return http.StatusBadGateway
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type ctxKey int

const requestIDKey ctxKey = 0

// RequestID returns the request id stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID assigns each request an id, reusing a valid incoming one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", RequestID(r.Context()))
	})
}
