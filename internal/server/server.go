// Package server assembles the HTTP surface of the sync service:
// routes, middleware chain and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/clinovo/medsync/internal/server/config"
	"github.com/clinovo/medsync/internal/server/handlers"
	"github.com/clinovo/medsync/internal/server/idempotency"
	"github.com/clinovo/medsync/internal/server/middleware"
	"github.com/clinovo/medsync/internal/server/replay"
)

// Server owns the HTTP listener and the route wiring.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
}

// New builds the full handler chain and returns a ready-to-run server.
// The replay service serves /api/v1/sync; the direct appointment and
// payment endpoints reuse its engine so online and offline writes go
// through the same domain logic.
func New(logger *slog.Logger, cfg *config.Config, service *replay.Service, cache *idempotency.Cache) *Server {
	jwtConfig := handlers.JWTConfig{
		Secret:         []byte(cfg.JWTSecret),
		AccessTokenTTL: cfg.AccessTokenTTL,
	}

	healthHandler := handlers.NewHealthHandler(logger)
	syncHandler := handlers.NewSyncHandler(logger, service)
	appointmentHandler := handlers.NewAppointmentHandler(logger, service.Engine())
	paymentHandler := handlers.NewPaymentHandler(logger, service.Engine())

	auth := middleware.AuthMiddleware(logger, jwtConfig)
	idemOptional := idempotency.Middleware(cache, logger, false)
	idemRequired := idempotency.Middleware(cache, logger, true)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", healthHandler.HandleHealth)
	mux.Handle("POST /api/v1/sync",
		auth(http.HandlerFunc(syncHandler.HandleSync)))
	mux.Handle("POST /api/v1/appointments",
		auth(idemOptional(http.HandlerFunc(appointmentHandler.HandleCreate))))
	mux.Handle("POST /api/v1/bills/{id}/payments",
		auth(idemRequired(http.HandlerFunc(paymentHandler.HandlePayment))))

	// Outermost first: recovery catches panics from everything below,
	// rate limiting runs before any request body is read.
	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(cfg.RateLimit, cfg.RateWindow, logger)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run starts the HTTP listener and blocks until it stops.
func (s *Server) Run() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}

	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
