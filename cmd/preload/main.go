package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suplementia/supplement-discovery/internal/adapters/cache"
	"github.com/suplementia/supplement-discovery/internal/adapters/database"
	"github.com/suplementia/supplement-discovery/internal/adapters/search"
	"github.com/suplementia/supplement-discovery/internal/application/services"
	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/enrichment"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/postgres"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/redis"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/typesense"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/observability"
	"github.com/suplementia/supplement-discovery/pkg/config"
)

// Pre-warms the cache and catalog with the most commonly searched
// supplements so popular queries never pay the first-search delay.
func main() {
	var (
		listPath = flag.String("file", "config/common_supplements.json", "path to the supplement list")
		limit    = flag.Int("limit", 0, "process at most N supplements (0 = all)")
		dryRun   = flag.Bool("dry-run", false, "list what would be fetched without calling anything")
		delay    = flag.Duration("delay", 500*time.Millisecond, "pause between enrichment requests")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-preload", os.Getenv("APP_ENV"))

	names, err := loadSupplementList(*listPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *listPath).Msg("failed to load supplement list")
	}
	if *limit > 0 && *limit < len(names) {
		names = names[:*limit]
	}

	if *dryRun {
		for i, name := range names {
			fmt.Printf("%3d. %s\n", i+1, name)
		}
		fmt.Printf("dry run: %d supplements would be preloaded\n", len(names))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	svc, cleanup := buildPipeline(cfg)
	defer cleanup()

	profile := entities.DefaultProfile()
	var loaded, cached, failed int

	for i, name := range names {
		if ctx.Err() != nil {
			break
		}
		log.Info().Int("n", i+1).Int("total", len(names)).Str("supplement", name).Msg("preloading")

		outcome, err := svc.Search(ctx, name, profile)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("supplement", name).Msg("preload failed")
			continue
		}

		if outcome.CacheHit {
			cached++
			continue
		}

		if outcome.Job != nil {
			rec, err := svc.AwaitJob(ctx, outcome.Job, nil)
			if err != nil {
				failed++
				log.Warn().Err(err).Str("supplement", name).Msg("async preload failed")
				continue
			}
			if err := svc.Persist(ctx, outcome.Normalization.NormalizedQuery, rec); err != nil {
				failed++
				log.Warn().Err(err).Str("supplement", name).Msg("failed to persist preloaded recommendation")
				continue
			}
		}
		loaded++

		select {
		case <-time.After(*delay):
		case <-ctx.Done():
		}
	}

	log.Info().
		Int("loaded", loaded).
		Int("already_cached", cached).
		Int("failed", failed).
		Msg("preload finished")
}

func loadSupplementList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func buildPipeline(cfg *config.Config) (*services.RecommendationService, func()) {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}

	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Typesense client")
	}

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without shared cache")
		redisClient = nil
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
	if redisClient != nil {
		cacheProvider = cache.NewTieredAdapter(memoryTier, cache.NewRedisAdapter(redisClient), nil)
	}

	validator := services.NewRecommendationValidator()
	store := services.NewRecommendationStore(cacheProvider, validator)
	enricher := enrichment.NewClient(&cfg.Enrichment, validator)

	svc := services.NewRecommendationService(
		normalizer, store, validator, enricher,
		database.NewRecommendationAdapter(pgClient),
		database.NewDiscoveryQueueAdapter(pgClient),
		search.NewTypesenseAdapter(typesenseClient),
		nil, nil, cfg.Cache, cfg.Enrichment,
	)

	cleanup := func() {
		pgClient.Close()
		if redisClient != nil {
			redisClient.Close()
		}
	}
	return svc, cleanup
}
