// Package web provides the HTTP API for submitting sales imports and
// inspecting their results.
package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendasapp/sales-import/internal/config"
	"github.com/vendasapp/sales-import/internal/export"
	"github.com/vendasapp/sales-import/internal/jobs"
	"github.com/vendasapp/sales-import/internal/repository"
)

// Server is the HTTP server for the sales import service.
type Server struct {
	cfg       *config.Config
	imports   *repository.ImportRepository
	sales     *repository.SaleRepository
	exporter  *export.Service
	publisher jobs.Publisher
	pool      *pgxpool.Pool
	router    *chi.Mux
	server    *http.Server
}

// NewServer wires the HTTP server from its collaborators.
func NewServer(cfg *config.Config, imports *repository.ImportRepository, sales *repository.SaleRepository,
	exporter *export.Service, publisher jobs.Publisher, pool *pgxpool.Pool) *Server {
	s := &Server{
		cfg:       cfg,
		imports:   imports,
		sales:     sales,
		exporter:  exporter,
		publisher: publisher,
		pool:      pool,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/imports", s.handleCreateImport)
		r.Get("/imports", s.handleListImports)
		r.Get("/imports/{importID}", s.handleGetImport)
		r.Delete("/imports/{importID}", s.handleDeleteImport)
		r.Get("/imports/{importID}/export", s.handleExportImport)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/sample", s.handleSampleFile)
	})
}

// Start begins serving HTTP requests. It blocks until the server stops and
// returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server. Safe to call before Start: the
// listener is then closed before it ever accepts.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
