// Package inspect serves a live view of a memhost tree over HTTP.
//
// Endpoints:
//
//	GET /healthz        liveness
//	GET /tree           JSON snapshot of every root
//	GET /tree/{handle}  JSON snapshot of one subtree
//	GET /outline        indented text outline of every root
//	GET /metrics        Prometheus scrape endpoint
//	GET /ws             WebSocket stream of host mutations as JSON
//
// The inspector only reads the host. Mutations are forwarded to WebSocket
// clients from the render goroutine without blocking it: a client whose
// buffer is full is disconnected.
package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/memhost"
)

// Server is the inspector.
type Server struct {
	host     *memhost.Host
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	router   chi.Router
	hub      *Hub

	bufferSize   int
	writeTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer sets the source of /metrics.
// Default: prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBufferSize sets how many mutations may queue per WebSocket client.
// Default: 256
func WithBufferSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// WithWriteTimeout bounds each WebSocket write.
// Default: 5s
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// New creates an inspector for h and subscribes to its mutations.
// Call Close to unsubscribe and disconnect clients.
func New(h *memhost.Host, opts ...Option) *Server {
	s := &Server{
		host:         h,
		gatherer:     prometheus.DefaultGatherer,
		logger:       slog.Default(),
		bufferSize:   256,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(s.logger, s.bufferSize, s.writeTimeout)
	s.hub.attach(h)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/tree", s.handleTree)
		r.Get("/tree/{handle}", s.handleSubtree)
		r.Get("/outline", s.handleOutline)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.hub.ServeHTTP)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the mutation stream hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Serve serves on l until ctx is done.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(l) }()
	s.logger.Info("inspector listening", "addr", l.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Close unsubscribes from the host and disconnects every client.
func (s *Server) Close() {
	s.hub.Close()
}

type treeResponse struct {
	Roots []*memhost.Snapshot `json:"roots"`
}

func (s *Server) handleTree(w http.ResponseWriter, _ *http.Request) {
	resp := treeResponse{Roots: []*memhost.Snapshot{}}
	for _, id := range s.host.Roots() {
		if snap := s.host.Snapshot(id); snap != nil {
			resp.Roots = append(resp.Roots, snap)
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubtree(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(chi.URLParam(r, "handle"), "#")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid handle"})
		return
	}
	snap := s.host.Snapshot(host.Handle(n))
	if snap == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "node not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleOutline(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, id := range s.host.Roots() {
		w.Write([]byte(s.host.Snapshot(id).Outline()))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("inspect: write response", "error", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("inspect: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
