package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zyrohq/zyro/src/internal/config"
	zerrors "github.com/zyrohq/zyro/src/internal/errors"
	"github.com/zyrohq/zyro/src/internal/log"
)

const shutdownTimeout = 10 * time.Second

// Server serves the routes of a configuration. The route table can be
// replaced while the server is running.
type Server struct {
	httpServer *http.Server
	metrics    *Metrics
	logger     *log.Logger

	handler atomic.Value // http.Handler
}

// NewServer creates a server bound to the address of cfg.
func NewServer(cfg *config.RootConfig) *Server {
	s := &Server{
		metrics: NewMetrics(),
		logger:  log.Named("API"),
	}
	s.handler.Store(NewRouter(cfg, s.metrics))

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      http.HandlerFunc(s.serveHTTP),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

// Handler returns the current route table.
func (s *Server) Handler() http.Handler {
	return s.handler.Load().(http.Handler)
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Reload swaps in the routes of cfg. The bind address is not changed.
func (s *Server) Reload(cfg *config.RootConfig) {
	if cfg.Server.Address() != s.httpServer.Addr {
		s.logger.Warnf("Bind address change to %s requires a restart", cfg.Server.Address())
	}

	s.handler.Store(NewRouter(cfg, s.metrics))
	s.metrics.ReloadsTotal.WithLabelValues("success").Inc()
	s.logger.Infof("Routes reloaded: %d declared", cfg.RouteCount())
}

// RejectReload records a configuration change that was not applied.
func (s *Server) RejectReload(err error) {
	s.metrics.ReloadsTotal.WithLabelValues("rejected").Inc()
	s.logger.Errorf("Configuration change rejected, keeping current routes: %v", err)
}

// Serve serves on listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Infof("Starting server on %s", listener.Addr())

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return zerrors.NewServerError("server error", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infof("Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return zerrors.NewServerError("failed to listen on "+s.httpServer.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(listener) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return zerrors.NewServerError("failed to shut down", err)
	}
	return <-errCh
}
