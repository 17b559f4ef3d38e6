// Package server implements the journeyflow HTTP API.
//
// The API exposes the layout pipeline over HTTP for the dashboard:
//
//	POST   /v1/flow                      compute a layout from journeys in the body
//	GET    /v1/projects/{project}/flow   serve the stored layout for a project
//	GET    /v1/projects/{project}/reports  list stored reports, newest first
//	GET    /v1/reports/{id}              fetch a stored report
//	DELETE /v1/reports/{id}              remove a stored report
//	GET    /healthz                      liveness probe
//	GET    /version                      build information
//
// Authentication is handled by the dashboard gateway in front of this
// service; the API itself is unauthenticated.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/uxlens/journeyflow/pkg/config"
	"github.com/uxlens/journeyflow/pkg/flow"
	"github.com/uxlens/journeyflow/pkg/pipeline"
	"github.com/uxlens/journeyflow/pkg/store"
)

// shutdownTimeout bounds graceful shutdown once the run context is cancelled.
const shutdownTimeout = 10 * time.Second

// Server holds the dependencies shared by all handlers.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	fetcher pipeline.Fetcher
	flow    flow.Options
	logger  *log.Logger
}

// Options configures a Server.
type Options struct {
	// Runner executes the layout pipeline. Required.
	Runner *pipeline.Runner

	// Store persists computed reports. Optional; without it the report
	// endpoints return 404 and computed layouts are not retained.
	Store store.Store

	// Fetcher pulls journeys from the analytics backend for the
	// project-scoped endpoints. Optional.
	Fetcher pipeline.Fetcher

	// Flow is the default layout tuning applied to computations.
	Flow flow.Options

	// Logger receives request and pipeline logs. Defaults to log.Default().
	Logger *log.Logger
}

// New creates a server with the given options.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:  opts.Runner,
		store:   opts.Store,
		fetcher: opts.Fetcher,
		flow:    opts.Flow,
		logger:  logger,
	}
}

// Router builds the chi router with all routes and middleware registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/flow", s.handleComputeFlow)
		r.Route("/projects/{project}", func(r chi.Router) {
			r.Get("/flow", s.handleProjectFlow)
			r.Get("/reports", s.handleListReports)
		})
		r.Get("/reports/{id}", s.handleGetReport)
		r.Delete("/reports/{id}", s.handleDeleteReport)
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
