// Package httptransport owns the HTTP server lifecycle.
package httptransport

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"example.com/runtracker/internal/config"
)

// Server wraps http.Server with signal-driven graceful shutdown.
type Server struct {
	inner           *http.Server
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

// NewServer builds a Server from the service configuration.
func NewServer(cfg config.Config, handler http.Handler, logger zerolog.Logger) *Server {
	return &Server{
		inner: &http.Server{
			Addr:         cfg.HTTPAddress,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run() error {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.inner.Addr).Msg("listening")
		if err := s.inner.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-shutdownCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.inner.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("server stopped")
	return nil
}
