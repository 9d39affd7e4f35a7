package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/triage/internal/logger"
)

// Server is an HTTP server with lifecycle management.
type Server struct {
	router *gin.Engine
	server *http.Server
	logger logger.Logger
	config *Config
}

// NewRouter builds a gin engine with the standard middleware stack applied.
func NewRouter(cfg *Config, log logger.Logger) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(standardMiddleware(cfg, log)...)
	return router
}

// standardMiddleware returns the shared middleware in the order it must run.
func standardMiddleware(cfg *Config, log logger.Logger) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		// 1. Recovery first so a panic anywhere below still gets a JSON 500.
		RecoveryMiddleware(log),
		// 2. Request ID, plus a logger carrying it in the request context.
		RequestIDLoggerMiddleware(log),
		// 3. Access log. Reads the request_id set in step 2.
		LoggerMiddleware(log),
		// 4. CORS last, so rejected preflights are still logged.
		CORSMiddleware(cfg.CORS),
	}
}

// NewServer creates a server. setupRoutes registers the service routes after
// the standard middleware and may be nil.
func NewServer(cfg *Config, log logger.Logger, setupRoutes func(*gin.Engine)) *Server {
	cfg.SetDefaults()

	router := NewRouter(cfg, log)
	if setupRoutes != nil {
		setupRoutes(router)
	}

	return &Server{
		router: router,
		server: newHTTPServer(cfg, router),
		logger: log,
		config: cfg,
	}
}

func newHTTPServer(cfg *Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Router returns the underlying gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until the server is shut down or fails.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		logger.String("address", s.server.Addr),
		logger.String("service", s.config.ServiceName),
		logger.String("version", s.config.ServiceVersion),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartAsync starts the server in a goroutine. The returned channel receives
// a serve error, if any, and is then closed.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully stops the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", logger.Duration("timeout", s.config.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// RunWithGracefulShutdown serves until SIGINT, SIGTERM or ctx cancellation,
// then drains in-flight requests. A serve error returns immediately.
func (s *Server) RunWithGracefulShutdown(ctx context.Context) error {
	// 1. Serve in the background.
	errCh := s.StartAsync()

	// 2. Turn signals into cancellation of a derived context.
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wait for whichever comes first.
	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
		if ctx.Err() != nil {
			s.logger.Info("Context cancelled, shutting down")
		} else {
			s.logger.Info("Shutdown signal received")
		}
	}

	// 4. Drain. ctx may already be done, so the timeout starts fresh.
	//nolint:contextcheck // the parent context may already be cancelled
	return s.Shutdown(context.Background())
}
