package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tradepilot/internal/app"
	"tradepilot/internal/ports"
)

// Server exposes the trading service over HTTP. Request framing and JSON
// formatting live here; all decision logic stays in the service.
type Server struct {
	svc    *app.TradingService
	logger ports.Logger
	http   *http.Server
}

// Config holds configuration for the HTTP server.
type Config struct {
	Port    int
	Logger  ports.Logger
	Service *app.TradingService
}

// New creates the HTTP server and registers its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil || cfg.Service == nil {
		return nil, fmt.Errorf("logger and service are required for HTTP server")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid HTTP port %d", cfg.Port)
	}

	s := &Server{svc: cfg.Service, logger: cfg.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /market/{symbol}", s.handleMarket)
	mux.HandleFunc("GET /symbols", s.handleSymbols)
	mux.HandleFunc("GET /trades", s.handleTrades)
	mux.HandleFunc("POST /trade", s.handleTrade)
	mux.HandleFunc("POST /portfolio", s.handlePortfolio)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Start blocks serving requests until Shutdown is called or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the underlying handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
