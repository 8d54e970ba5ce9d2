// Package server exposes a built index over HTTP.
//
// The server loads one graph and one annotation matrix at startup and
// answers queries against the pair:
//
//	POST /search   resolve query sequences (FASTA body, or JSON with options)
//	GET  /stats    index and annotation statistics
//	GET  /healthz  liveness probe
//
// Search responses use the same tab-separated report format as the
// query command, so results are identical whether they come from the
// CLI or over HTTP.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/seqgraph/seqgraph/pkg/annotation"
	"github.com/seqgraph/seqgraph/pkg/graph"
	"github.com/seqgraph/seqgraph/pkg/observability"
	"github.com/seqgraph/seqgraph/pkg/query"
)

const (
	// DefaultAddr is the listen address used when none is given.
	DefaultAddr = ":5555"

	// shutdownTimeout bounds how long in-flight requests may finish
	// after the run context is cancelled.
	shutdownTimeout = 5 * time.Second

	// maxRequestBytes caps the /search request body.
	maxRequestBytes = 64 << 20
)

// Options configures a server.
type Options struct {
	// Addr is the listen address. Empty uses DefaultAddr.
	Addr string

	// Logger receives request logs. Nil discards them.
	Logger *log.Logger
}

// Server answers label queries against one graph/annotation pair.
// The pair is immutable once loaded, so handlers share it freely.
type Server struct {
	engine *query.Engine
	idx    *graph.Index
	anno   annotation.Matrix
	logger *log.Logger
	addr   string
	http   *http.Server
}

// New validates that the annotation fits the graph and builds the
// server around the pair.
func New(idx *graph.Index, m annotation.Matrix, opts Options) (*Server, error) {
	engine, err := query.New(idx, m)
	if err != nil {
		return nil, err
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	s := &Server{
		engine: engine,
		idx:    idx,
		anno:   m,
		logger: opts.Logger,
		addr:   opts.Addr,
	}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Router returns the HTTP handler tree. It is exposed so tests can
// drive the handlers without a listener.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Post("/search", s.handleSearch)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
// A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Infof("Serving %d nodes on %s", s.idx.Graph.NumNodes(), s.addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// logRequests tags each request with a short id and logs its outcome.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.New().String()[:8]
		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Info("request",
			"id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", elapsed.Round(time.Millisecond))
	})
}
