package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/render"
)

// Server serves the inspector endpoints of one container:
//
//	GET /healthz   liveness
//	GET /snapshot  serialized markup of the render root
//	GET /passes    recent pass summaries as JSON
//	GET /ws        pass summaries streamed as they commit
//	GET /metrics   Prometheus exposition
type Server struct {
	c        *render.Container
	hub      *Hub
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	tracing  TracingConfig
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithTracing configures request spans.
func WithTracing(opts ...TracingOption) Option {
	return func(s *Server) {
		for _, opt := range opts {
			opt(&s.tracing)
		}
	}
}

// NewServer creates the inspector of c. hub must be installed on c with
// render.WithCommitHook(hub.Publish).
func NewServer(c *render.Container, hub *Hub, opts ...Option) *Server {
	s := &Server{
		c:        c,
		hub:      hub,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default().With("component", "inspect"),
		tracing:  defaultTracingConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(Traced(s.tracing))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/passes", s.handlePasses)
	r.Get("/ws", hub.HandleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Snapshot serializes the render root on the container loop.
func (s *Server) Snapshot(ctx context.Context) (string, error) {
	var markup string
	err := s.c.Do(ctx, func() {
		markup = htmldom.OuterHTML(s.c.Root())
	})
	return markup, err
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	markup, err := s.Snapshot(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, "R006") {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(markup))
}

func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	history := s.hub.History()
	if history == nil {
		history = []Summary{}
	}
	if err := json.NewEncoder(w).Encode(history); err != nil {
		s.logger.Warn("passes not written", "error", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

// ListenAndServe serves the inspector on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger.Info("inspector listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
