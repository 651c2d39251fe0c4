package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"datascout/internal/config"
	"datascout/internal/controller"
	"datascout/internal/database"
	"datascout/internal/logging"
	"datascout/internal/metrics"
	"datascout/internal/middleware"
	"datascout/internal/repository"
	"datascout/internal/security"
	"datascout/internal/service"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open and initialize the annotation store
	db, err := config.InitStore(ctx, cfg.Store, logger, cfg.Logging.Level)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var vault *security.CredentialVault
	if cfg.Security.CredentialKey != "" {
		vault, err = security.NewCredentialVaultFromString(cfg.Security.CredentialKey)
		if err != nil {
			return err
		}
	}

	repo := repository.NewAnnotationRepository(db, repository.Options{
		IDFloor: cfg.Store.IDFloor,
		Vault:   vault,
		Log:     logger,
	})
	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	metrics.Init()

	// Initialize services
	connectionService := service.NewConnectionService(
		database.NewDriverRegistry(),
		repo,
		service.ConnectionServiceConfig{ConnectTimeout: cfg.Introspection.Timeout},
		logger,
	)
	annotationService := service.NewAnnotationService(repo, logger)

	// Initialize controllers
	connectionController := controller.NewConnectionController(connectionService)
	annotationController := controller.NewAnnotationController(annotationService)
	healthController := controller.NewHealthController(repo, version)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Cors())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AccessLog(logger))
	router.Use(middleware.PrometheusMiddleware())

	if cfg.Security.EnableRateLimit {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPM:             cfg.Security.RateLimitPerMinute,
			Burst:           cfg.Security.RateLimitBurst,
			CleanupInterval: 5 * time.Minute,
		})
		defer rateLimiter.Stop()
		router.Use(rateLimiter.RateLimit())
	}

	controller.RegisterRoutes(router, connectionController, annotationController, healthController)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Dialect))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Introspection.Timeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
