// Package server provides the web page and HTTP API for quotebench.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/quotebench/internal/config"
	"github.com/hyperjump/quotebench/internal/models"
	"github.com/hyperjump/quotebench/internal/results"
	"go.uber.org/zap"
)

// Processor turns one uploaded document into a summary.
type Processor interface {
	Process(ctx context.Context, doc models.UploadedDocument, mode models.Mode) (*models.QuoteSummary, error)
}

// Server is the HTTP server for the quotebench UI and API.
type Server struct {
	processor Processor
	results   *results.Store
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	processor Processor,
	store *results.Store,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		processor: processor,
		results:   store,
		config:    cfg,
		logger:    logger,
	}
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(s.logger),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/", s.handleIndex)
	r.Post("/summaries", s.handleSummarizeForm)
	r.Get("/summaries/{id}/download", s.handleDownload)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/summaries", s.handleSummarizeAPI)
		r.Get("/summaries/{id}", s.handleGetSummary)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
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
