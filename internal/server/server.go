// Package server provides the HTTP API for Kaiwa.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/discussion"
	"github.com/hyperjump/kaiwa/internal/ingest"
	"github.com/hyperjump/kaiwa/internal/storage"
)

// Server is the HTTP server for the Kaiwa API.
type Server struct {
	orchestrator *discussion.Orchestrator
	ingestor     *ingest.Ingestor
	storage      storage.Storage
	config       *config.ServerConfig
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	orch *discussion.Orchestrator,
	ing *ingest.Ingestor,
	st storage.Storage,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		orchestrator: orch,
		ingestor:     ing,
		storage:      st,
		config:       cfg,
		logger:       logger,
	}
}

// Routes builds the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/documents", s.handleUploadDocument)
	r.Get("/api/documents/{id}", s.handleGetDocument)
	r.Delete("/api/documents/{id}", s.handleDeleteDocument)
	r.Get("/api/documents/{id}/history", s.handleGetHistory)
	r.Post("/api/process-message", s.handleProcessMessage)
	r.Get("/api/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
