// Package server exposes one family-tree project over HTTP.
//
// The server owns a single [tree.TreeProject] loaded from disk and serializes
// every access to it with a read-write mutex, so handlers may run
// concurrently while the core packages stay single-threaded.
//
// # Routes
//
//	GET    /v1/health
//	GET    /v1/project
//	GET    /v1/people
//	POST   /v1/people
//	GET    /v1/people/{id}
//	PATCH  /v1/people/{id}
//	DELETE /v1/people/{id}
//	POST   /v1/relationships
//	DELETE /v1/relationships/{id}
//	GET    /v1/validate
//	POST   /v1/layout
//	POST   /v1/save
//	GET    /v1/export/dot
//	GET    /v1/export/svg
//	GET    /v1/export/pdf
//
// Photo paths are served as absolute paths against the project directory
// while the project is in memory; saving writes them back relative to it.
//
// Errors are JSON objects {"error": message, "code": code}; the HTTP status is
// derived from the error code.
//
// [tree.TreeProject]: github.com/geneatree/geneatree/pkg/tree.TreeProject
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/geneatree/geneatree/pkg/export/nodelink"
	"github.com/geneatree/geneatree/pkg/observability"
	"github.com/geneatree/geneatree/pkg/store"
	"github.com/geneatree/geneatree/pkg/tree"
)

// Options configures a [Server]. Zero values select defaults.
type Options struct {
	Logger   *log.Logger
	Store    *store.Store
	Renderer *nodelink.Renderer
	IDs      tree.IDGenerator

	// StartX and StartY anchor the first generation for POST /v1/layout.
	StartX, StartY float64
}

// Server serves a project over HTTP.
type Server struct {
	mu      sync.RWMutex
	project *tree.TreeProject
	path    string

	logger   *log.Logger
	store    *store.Store
	renderer *nodelink.Renderer
	ids      tree.IDGenerator
	startX   float64
	startY   float64
}

// New creates a server for project p, which is saved back to path.
func New(p *tree.TreeProject, path string, opts Options) *Server {
	s := &Server{
		project:  p,
		path:     path,
		logger:   opts.Logger,
		store:    opts.Store,
		renderer: opts.Renderer,
		ids:      opts.IDs,
		startX:   opts.StartX,
		startY:   opts.StartY,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.store == nil {
		s.store = store.New(s.logger, s.ids)
	}
	if s.renderer == nil {
		s.renderer = nodelink.NewRenderer(nil)
	}
	if s.ids == nil {
		s.ids = tree.NewID
	}
	store.ResolvePhotoPaths(s.project, s.path)
	return s
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/project", s.handleGetProject)

		r.Get("/people", s.handleListPeople)
		r.Post("/people", s.handleAddPerson)
		r.Get("/people/{id}", s.handleGetPerson)
		r.Patch("/people/{id}", s.handleUpdatePerson)
		r.Delete("/people/{id}", s.handleDeletePerson)

		r.Post("/relationships", s.handleAddRelationship)
		r.Delete("/relationships/{id}", s.handleDeleteRelationship)

		r.Get("/validate", s.handleValidate)
		r.Post("/layout", s.handleLayout)
		r.Post("/save", s.handleSave)

		r.Get("/export/dot", s.handleExportDOT)
		r.Get("/export/svg", s.handleExportSVG)
		r.Get("/export/pdf", s.handleExportPDF)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "project", s.path)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		observability.HTTP().OnRequest(r.Context(), r.Method, route, ww.Status(), elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", elapsed.Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
