package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/suplementia/supplement-discovery/internal/adapters/cache"
	"github.com/suplementia/supplement-discovery/internal/adapters/database"
	"github.com/suplementia/supplement-discovery/internal/adapters/events"
	"github.com/suplementia/supplement-discovery/internal/adapters/search"
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

// The discovery worker drains the queue of supplement names users
// searched for but the catalog did not know, researches each one
// through the enrichment pipeline, and persists whatever survives
// validation.
func main() {
	vaultCfg := secrets.LoadVaultConfigFromEnv("")
	if vaultCfg.Enabled {
		if _, err := secrets.ApplyVaultSecrets(context.Background(), vaultCfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to apply vault secrets: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-worker", os.Getenv("APP_ENV"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Typesense client")
	}

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without shared cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	normalizer, err := services.NewQueryNormalizerService(cfg.Normalizer.AliasPath, cfg.Normalizer.SpellingPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load normalizer vocabulary")
	}

	memoryTier, err := cache.NewMemoryAdapter(cfg.Cache.MemoryTierCapacity)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize memory cache")
	}

	var cacheProvider providers.CacheProvider = memoryTier
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewTieredAdapter(memoryTier, cache.NewRedisAdapter(redisClient), nil)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	recommendationRepo := database.NewRecommendationAdapter(pgClient)
	discoveryQueueRepo := database.NewDiscoveryQueueAdapter(pgClient)
	searchRepo := search.NewTypesenseAdapter(typesenseClient)

	validator := services.NewRecommendationValidator()
	store := services.NewRecommendationStore(cacheProvider, validator)
	enricher := enrichment.NewClient(&cfg.Enrichment, validator)

	recommendationService := services.NewRecommendationService(
		normalizer, store, validator, enricher,
		recommendationRepo, discoveryQueueRepo, searchRepo,
		eventBus, nil, cfg.Cache, cfg.Enrichment,
	)

	worker := services.NewDiscoveryService(discoveryQueueRepo, enricher, recommendationService)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("worker shutting down")
		cancel()
	}()

	log.Info().Msg("discovery worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker stopped with error")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}
	log.Info().Msg("worker stopped")
}
