// Package server wires the analyzer behind a chi HTTP server with permissive
// CORS for the browser-based frontend.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/crashlens/crashlens/api/schemas"
	"github.com/crashlens/crashlens/internal/analyzer"
	"github.com/crashlens/crashlens/internal/config"
	"github.com/crashlens/crashlens/internal/llmclient"
)

const shutdownTimeout = 30 * time.Second

// Server hosts the analysis API. One completion client and one analyzer are
// built at startup and shared by all requests; neither holds per-request
// state.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	llm        schemas.CompletionClient
	handlers   *Handlers
	httpServer *http.Server
}

// New initializes the server and its dependencies.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	llm, err := llmclient.NewClient(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	a := analyzer.New(llm, logger, analyzer.Options{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})

	return &Server{
		cfg:      cfg,
		logger:   logger.Named("server"),
		llm:      llm,
		handlers: NewHandlers(logger, a),
	}, nil
}

// Start runs the HTTP listener until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	r.Use(corsMiddleware)

	s.handlers.RegisterRoutes(r)

	s.httpServer = &http.Server{
		Addr:    s.cfg.Server.ListenAddr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", zap.String("address", s.cfg.Server.ListenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		s.closeClient()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutdown requested, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	s.closeClient()
	return <-errCh
}

func (s *Server) closeClient() {
	if err := s.llm.Close(); err != nil {
		s.logger.Warn("Failed to close completion client", zap.Error(err))
	}
}

// corsMiddleware provides permissive CORS support required by the browser
// frontend. The service is an internal diagnostic tool; restrict the origin
// before exposing it anywhere untrusted.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
