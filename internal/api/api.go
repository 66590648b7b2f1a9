// Package api exposes the visualization pipeline and rule-base mutations
// over HTTP.
//
// The read side is the pipeline: GET /api/graph returns the domain graph,
// POST /api/layout runs layout and rendering for a requested mode and
// expanded set. The write side is plain CRUD over rules, country groups,
// and dictionary entries; every successful mutation invalidates the cached
// domain graph and notifies /api/events subscribers, so clients refetch
// instead of patching local state.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/complyviz/complyviz/pkg/pipeline"
)

// Server wires the pipeline runner into an HTTP API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	events *Broadcaster
}

// NewServer creates an API server around a pipeline runner.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		logger: logger,
		events: NewBroadcaster(),
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/graph", s.handleGraph)
		r.Post("/layout", s.handleLayout)
		r.Get("/actions/{id}", s.handleActions)
		r.Get("/events", s.handleEvents)

		r.Route("/rules", func(r chi.Router) {
			r.Post("/", s.handleCreateRule)
			r.Put("/{id}", s.handleUpdateRule)
			r.Delete("/{id}", s.handleDeleteRule)
		})
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", s.handleCreateGroup)
			r.Put("/{id}", s.handleUpdateGroup)
			r.Delete("/{id}", s.handleDeleteGroup)
		})
		r.Route("/dictionary", func(r chi.Router) {
			r.Post("/", s.handleCreateEntry)
			r.Put("/{id}", s.handleUpdateEntry)
			r.Delete("/{id}", s.handleDeleteEntry)
		})
	})
	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs one line per request with method, path, status, and
// duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
