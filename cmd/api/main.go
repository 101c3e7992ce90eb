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

	"github.com/suplementia/supplement-discovery/internal/adapters/cache"
	"github.com/suplementia/supplement-discovery/internal/adapters/connectivity"
	"github.com/suplementia/supplement-discovery/internal/adapters/database"
	"github.com/suplementia/supplement-discovery/internal/adapters/events"
	"github.com/suplementia/supplement-discovery/internal/adapters/search"
	"github.com/suplementia/supplement-discovery/internal/api/handlers"
	"github.com/suplementia/supplement-discovery/internal/api/middleware"
	"github.com/suplementia/supplement-discovery/internal/api/routes"
	"github.com/suplementia/supplement-discovery/internal/application/services"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/enrichment"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/postgres"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/redis"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/typesense"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/observability"
	"github.com/suplementia/supplement-discovery/pkg/config"
	"github.com/suplementia/supplement-discovery/pkg/secrets"
)

func main() {
	// Pull secrets into the environment before config reads it
	vaultCfg := secrets.LoadVaultConfigFromEnv("")
	if vaultCfg.Enabled {
		if _, err := secrets.ApplyVaultSecrets(context.Background(), vaultCfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to apply vault secrets: %v\n", err)
			os.Exit(1)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
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

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client. The application degrades to the memory
	// tier alone when Redis is unavailable.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without shared cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	// Initialize Typesense client. The catalog backs both lookup and
	// discovery, so a missing search backend is fatal.
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Typesense client")
	}
	log.Info().Msg("Typesense client initialized")

	// Query normalizer with its vocabulary files
	normalizer, err := services.NewQueryNormalizerService(cfg.Normalizer.AliasPath, cfg.Normalizer.SpellingPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load normalizer vocabulary")
	}

	// Cache: memory tier in front of Redis when available
	memoryTier, err := cache.NewMemoryAdapter(cfg.Cache.MemoryTierCapacity)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize memory cache")
	}

	var cacheProvider providers.CacheProvider = memoryTier
	var tiered *cache.TieredAdapter
	var eventBus providers.EventBus
	var connectivityObserver providers.ConnectivityObserver

	if redisClient != nil {
		tiered = cache.NewTieredAdapter(memoryTier, cache.NewRedisAdapter(redisClient), metrics)
		cacheProvider = tiered
		eventBus = events.NewRedisEventBus(redisClient)

		probe := connectivity.NewProbeObserver(redisClient, 0)
		defer probe.Close()
		connectivityObserver = probe

		normalizer.SetCache(cacheProvider, cfg.Cache.QueryInterpretTTL)
	}

	// Repositories
	recommendationRepo := database.NewRecommendationAdapter(pgClient)
	discoveryQueueRepo := database.NewDiscoveryQueueAdapter(pgClient)

	searchRepo := search.NewTypesenseAdapter(typesenseClient)
	if err := typesenseClient.InitSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to init Typesense schema")
	}

	// Application services
	validator := services.NewRecommendationValidator()
	store := services.NewRecommendationStore(cacheProvider, validator)
	enricher := enrichment.NewClient(&cfg.Enrichment, validator)

	recommendationService := services.NewRecommendationService(
		normalizer, store, validator, enricher,
		recommendationRepo, discoveryQueueRepo, searchRepo,
		eventBus, metrics, cfg.Cache, cfg.Enrichment,
	)
	orchestrator := services.NewResultOrchestrator(store, recommendationService, connectivityObserver, cfg.Cache.SharedLinkTTL)

	// Cache invalidation keeps the memory tier coherent across processes
	var invalidationService *services.CacheInvalidationService
	if tiered != nil && eventBus != nil {
		invalidationService = services.NewCacheInvalidationService(tiered, eventBus)
		if err := invalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		} else {
			log.Info().Msg("cache invalidation service started")
		}
	}

	// HTTP layer
	recommendationHandler := handlers.NewRecommendationHandler(orchestrator, enricher)

	var responseCache *middleware.CacheMiddleware
	if cfg.Cache.ResponseCacheEnabled {
		responseCache = middleware.NewCacheMiddleware(cacheProvider)
		log.Info().Msg("response cache enabled")
	}

	router := routes.NewRouter(recommendationHandler, metrics, responseCache)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
		// Search requests may hold through the full poll window.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Enrichment.MaxPollDuration + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
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

	if invalidationService != nil {
		invalidationService.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
