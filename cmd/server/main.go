// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradewindhq/planboard/internal/api"
	"github.com/tradewindhq/planboard/internal/cache"
	"github.com/tradewindhq/planboard/internal/config"
	"github.com/tradewindhq/planboard/internal/repository/postgres"
	"github.com/tradewindhq/planboard/internal/service"
	"github.com/tradewindhq/planboard/internal/storage"
	"github.com/tradewindhq/planboard/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Report cache is optional; a noop cache keeps the server usable when
	// Redis is down or disabled.
	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("report cache unavailable, continuing without caching")
		reportCache = cache.NewNoopReportCache()
	}

	archive, err := storage.NewArchive(cfg.Archive)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("import archive unavailable, continuing without archiving")
		archive = storage.NoopArchive{}
	}

	// Initialize repositories and services
	supplyRepo := postgres.NewSupplyRepository(db)
	varianceRepo := postgres.NewVarianceRepository(db)

	services := &api.Services{
		AuditService:    service.NewAuditService(supplyRepo, varianceRepo, reportCache, cfg.Engine),
		VarianceService: service.NewVarianceService(supplyRepo, varianceRepo, reportCache, cfg.Variance),
		ImportService:   service.NewImportService(supplyRepo, archive),
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
