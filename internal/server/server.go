// Package server provides the HTTP API for Finsight.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/finsight/finsight/internal/config"
	"github.com/finsight/finsight/internal/ingest"
	"github.com/finsight/finsight/internal/vectorstore"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Finsight API.
type Server struct {
	store  *vectorstore.Vectorstore
	gate   *ingest.Gate
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(store *vectorstore.Vectorstore, gate *ingest.Gate, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		store:  store,
		gate:   gate,
		config: cfg,
		logger: logger,
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/query", s.handleQuery)
	r.Post("/api/v1/ingest", s.handleIngest)
	r.Post("/api/v1/documents", s.handleAddDocuments)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
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
