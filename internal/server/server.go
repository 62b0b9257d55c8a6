// Package server provides the HTTP API for Vera.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/veradocs/vera/internal/async"
	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/export"
	"github.com/veradocs/vera/internal/extract"
	"github.com/veradocs/vera/internal/llm"
	"github.com/veradocs/vera/internal/repository"
	"github.com/veradocs/vera/internal/storage"
	"github.com/veradocs/vera/internal/validation"
)

// Server is the HTTP server for the Vera API.
type Server struct {
	store     *repository.Store
	uploads   *storage.Service
	queue     async.Queue
	validator *validation.Service
	engine    *extract.Engine
	exporter  *export.Service
	models    *llm.Client
	config    *common.ServerConfig
	dataDir   string
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	store *repository.Store,
	uploads *storage.Service,
	queue async.Queue,
	validator *validation.Service,
	engine *extract.Engine,
	exporter *export.Service,
	models *llm.Client,
	cfg *common.ServerConfig,
	dataDir string,
	logger *zap.Logger,
) *Server {
	return &Server{
		store:     store,
		uploads:   uploads,
		queue:     queue,
		validator: validator,
		engine:    engine,
		exporter:  exporter,
		models:    models,
		config:    cfg,
		dataDir:   dataDir,
		logger:    logger,
	}
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(s.metricsMiddleware)

	r.Post("/api/v1/documents", s.handleUpload)
	r.Get("/api/v1/documents/{id}", s.handleGetDocument)
	r.Get("/api/v1/documents/{id}/audit", s.handleAuditTrail)
	r.Post("/api/v1/documents/{id}/validate", s.handleValidate)
	r.Post("/api/v1/documents/{id}/summary", s.handleSummary)
	r.Get("/api/v1/documents/{id}/export", s.handleExport)
	r.Get("/api/v1/llm/models", s.handleListModels)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", s.handleHealth)

	fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(s.dataDir)))
	r.Get("/files/*", fileServer.ServeHTTP)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.config.HTTPAddr,
		Handler: s.routes(),
	}
	s.logger.Info("starting server", zap.String("addr", s.config.HTTPAddr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
