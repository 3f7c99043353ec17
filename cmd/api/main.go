package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agrivalor/equipment-valuation/internal/adapters/cache"
	"github.com/agrivalor/equipment-valuation/internal/adapters/search"
	"github.com/agrivalor/equipment-valuation/internal/api/handlers"
	"github.com/agrivalor/equipment-valuation/internal/api/routes"
	"github.com/agrivalor/equipment-valuation/internal/application/services"
	"github.com/agrivalor/equipment-valuation/internal/domain/providers"
	"github.com/agrivalor/equipment-valuation/internal/infrastructure/clients/redis"
	"github.com/agrivalor/equipment-valuation/internal/infrastructure/observability"
	"github.com/agrivalor/equipment-valuation/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize Redis for the fragment cache. The service works without
	// it, every search just goes straight to the backend.
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, fragment caching disabled")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Info().Msg("redis client initialized")
	}

	// Initialize the comparable-sales search provider
	searchProvider, err := search.NewSaleSearchProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize search provider")
	}
	if cacheProvider != nil {
		searchProvider = search.NewCachedProvider(searchProvider, cacheProvider, cfg.Redis.CacheTTL)
	}

	// Initialize the valuation pipeline
	retriever := services.NewRetrieverService(searchProvider, cfg.Valuation, metrics)
	valuator := services.NewValuatorService(cfg.Valuation)
	formatter := services.NewFormatterService()
	pipeline := services.NewValuationPipeline(retriever, valuator, formatter, metrics)

	// Set up router
	valuationHandler := handlers.NewValuationHandler(pipeline)
	router := routes.NewRouter(valuationHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Str("search_provider", cfg.Search.Provider).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
