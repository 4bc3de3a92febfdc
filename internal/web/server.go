package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/oculus/oculus/internal/config"
)

type Server struct {
	config  *config.Config
	handler *Handler
	server  *http.Server
	logger  zerolog.Logger
}

// NewServer builds the serve-mode HTTP server. customPort overrides the
// configured port when positive.
func NewServer(cfg *config.Config, t Focuser, state StateLoader, backend string, logger zerolog.Logger, customPort int) *Server {
	handler := NewHandler(cfg, t, state, backend, logger)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	port := cfg.Web.Port
	if customPort > 0 {
		port = customPort
	}

	addr := net.JoinHostPort(cfg.Web.Host, fmt.Sprint(port))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Store.LockTimeout + cfg.Directory.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		config:  cfg,
		handler: handler,
		server:  httpServer,
		logger:  logger,
	}
}

// Start serves until Shutdown is called, then returns nil
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting web server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down web server")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}
