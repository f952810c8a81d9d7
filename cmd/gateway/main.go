// Command gateway serves the session and speaker REST API backed by PostgreSQL.
//
//	@title						Conference Gateway API
//	@version					1.0
//	@description				Sessions, speakers and the links between them.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"conferencegateway/config"
	"conferencegateway/internal/adapters/auth"
	"conferencegateway/internal/database"
	httpdelivery "conferencegateway/internal/delivery/http"
	"conferencegateway/internal/delivery/http/controllers"
	"conferencegateway/internal/delivery/http/middleware"
	"conferencegateway/internal/metrics"
	"conferencegateway/internal/repository/postgres"
	"conferencegateway/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("gateway stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err := database.Ping(ctx, db, 5*time.Second); err != nil {
		return err
	}
	logger.Info("database connected")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	em := postgres.NewEntityManager(db, logger, collector)
	converter := postgres.ColumnConverter{}
	sessionMapper := postgres.NewSessionRowMapper(converter)
	sessionRepo := postgres.NewSessionRepository(em, sessionMapper)
	speakerRepo := postgres.NewSpeakerRepository(em, postgres.NewSpeakerRowMapper(converter), sessionMapper)

	sessionSvc := services.NewSessionService(sessionRepo, logger, cfg.RequestTimeout)
	speakerSvc := services.NewSpeakerService(speakerRepo, sessionRepo, logger, cfg.RequestTimeout)

	requireAuth := middleware.RequireAuth(auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTLeeway), logger)
	mux := httpdelivery.NewRouter(
		controllers.NewSessionController(logger, sessionSvc),
		controllers.NewSpeakerController(logger, speakerSvc),
		requireAuth,
		metrics.Handler(reg),
	)

	var handler http.Handler = middleware.LoggingMiddleware(logger, collector, mux)
	handler = middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger, handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
