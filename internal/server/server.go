// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arcsys-ai/arcsys/graph/store"
	"github.com/arcsys-ai/arcsys/pipeline"
)

// Version is the service version reported by the health endpoint.
// Overridden at build time via -ldflags.
var Version = "dev"

// Runner starts one analysis run. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, runID, query string) (pipeline.State, error)
}

// Server wires the pipeline and run store into an HTTP API.
type Server struct {
	runner   Runner
	store    store.Store[pipeline.State]
	logger   *slog.Logger
	registry *prometheus.Registry

	listen          string
	shutdownTimeout time.Duration
}

// Params configures a Server.
type Params struct {
	Runner          Runner
	Store           store.Store[pipeline.State]
	Logger          *slog.Logger
	Registry        *prometheus.Registry
	Listen          string
	ShutdownTimeout time.Duration
}

// New creates a Server. Logger defaults to slog.Default when nil.
func New(p Params) *Server {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.ShutdownTimeout <= 0 {
		p.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		runner:          p.Runner,
		store:           p.Store,
		logger:          p.Logger,
		registry:        p.Registry,
		listen:          p.Listen,
		shutdownTimeout: p.ShutdownTimeout,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is canceled, then shuts
// down gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
