// Package server exposes the HTTP + WebSocket API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/signalboard/signalboard/internal/domain"
	"github.com/signalboard/signalboard/internal/server/handler"
	"github.com/signalboard/signalboard/internal/server/middleware"
	"github.com/signalboard/signalboard/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port            int
	CORSOrigins     []string
	APIKey          string // if empty, authentication is disabled
	RateLimitPerMin int    // if zero, request rate limiting is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health  *handler.HealthHandler
	Markets *handler.MarketHandler
	Analyze *handler.AnalyzeHandler
	Threads *handler.ThreadHandler
	Signals *handler.SignalsHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (CORS, logging, rate limiting, auth) and attaches
// the WebSocket hub. limiter may be nil when rate limiting is disabled.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// --- Register routes ---

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Market endpoints.
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/search", handlers.Markets.SearchMarkets)
	mux.HandleFunc("GET /api/markets/{provider}/{id}", handlers.Markets.GetMarket)
	mux.HandleFunc("POST /api/markets/resolve", handlers.Markets.ResolveMarket)

	// Signal generation.
	mux.HandleFunc("POST /api/analyze", handlers.Analyze.Analyze)

	// Chat threads.
	mux.HandleFunc("GET /api/threads", handlers.Threads.ListThreads)
	mux.HandleFunc("POST /api/threads", handlers.Threads.CreateThread)
	mux.HandleFunc("GET /api/threads/{id}", handlers.Threads.GetThread)
	mux.HandleFunc("DELETE /api/threads/{id}", handlers.Threads.DeleteThread)
	mux.HandleFunc("POST /api/threads/{id}/messages", handlers.Threads.AppendMessage)

	// Archived analyses.
	mux.HandleFunc("GET /api/signals/archive", handlers.Signals.ListArchives)
	mux.HandleFunc("GET /api/signals/archive/{month}", handlers.Signals.GetArchive)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	h = middleware.Auth(cfg.APIKey)(h)

	if limiter != nil && cfg.RateLimitPerMin > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimitPerMin, time.Minute)(h)
	}

	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     h,
		ReadTimeout: 15 * time.Second,
		// Analyze requests wait on the LLM, which can take most of a minute.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
