// Package server exposes the compiler, validation, navigation and export
// operations over HTTP. Every request carries the flow or step it operates
// on; the server keeps no per-flow state.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-formflow/internal/config"
	flowlog "github.com/goliatone/go-formflow/internal/log"
	"github.com/goliatone/go-formflow/pkg/navigation/interp"
)

// Server routes HTTP requests to the flow operations.
type Server struct {
	cfg          *config.Config
	logger       *slog.Logger
	router       *chi.Mux
	interpreters map[string]interp.Interpreter
}

// New constructs a Server. A nil cfg uses config.Default and a nil logger
// discards output.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = flowlog.Discard()
	}

	interpreters := make(map[string]interp.Interpreter, len(interp.Names()))
	for _, name := range interp.Names() {
		interpreter, err := interp.ByName(name)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		interpreters[name] = interpreter
	}

	s := &Server{
		cfg:          cfg,
		logger:       flowlog.WithComponent(logger, "server"),
		interpreters: interpreters,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(flowlog.HTTPMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(s.cfg.Server.MaxBodyBytes))

	r.Get("/api/v1/health", s.handleHealth)

	r.Post("/api/v1/compile", s.handleCompileStep)
	r.Post("/api/v1/validate", s.handleValidate)
	r.Post("/api/v1/next", s.handleNext)
	r.Post("/api/v1/expressions/evaluate", s.handleEvaluate)

	r.Route("/api/v1/flows", func(r chi.Router) {
		r.Post("/compile", s.handleCompileFlow)
		r.Post("/lint", s.handleLint)
		r.Post("/export", s.handleExport)
		r.Post("/openapi", s.handleOpenAPI)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.cfg.Server.Addr, "interpreter", s.cfg.Interpreter)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) interpreter(name string) (interp.Interpreter, error) {
	if name == "" {
		name = s.cfg.Interpreter
	}
	interpreter, ok := s.interpreters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", interp.ErrUnknownInterpreter, name)
	}
	return interpreter, nil
}
