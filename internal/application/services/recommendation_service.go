package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/suplementia/supplement-discovery/internal/adapters/events"
	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	"github.com/suplementia/supplement-discovery/internal/domain/repositories"
	"github.com/suplementia/supplement-discovery/internal/guardrails"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/observability"
	"github.com/suplementia/supplement-discovery/pkg/config"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// SearchOutcome is the result of running a search through the pipeline.
// Exactly one of Recommendation or Job is set.
type SearchOutcome struct {
	Recommendation *entities.Recommendation
	Job            *providers.AsyncJob
	Normalization  *QueryNormalization
	CacheHit       bool
}

// RecommendationService runs the search pipeline: screen the query,
// normalize it, resolve against the durable store, consult the catalog,
// and only then spend an enrichment call. Results are persisted to the
// database, the cache and the search index before they are returned.
type RecommendationService struct {
	normalizer *QueryNormalizerService
	store      *RecommendationStore
	validator  *RecommendationValidator
	enricher   providers.EnrichmentProvider
	recRepo    repositories.RecommendationRepository
	queueRepo  repositories.DiscoveryQueueRepository
	searchRepo repositories.SupplementSearchRepository
	bus        providers.EventBus
	metrics    *observability.Metrics
	cacheCfg   config.CacheConfig
	enrichCfg  config.EnrichmentConfig
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(
	normalizer *QueryNormalizerService,
	store *RecommendationStore,
	validator *RecommendationValidator,
	enricher providers.EnrichmentProvider,
	recRepo repositories.RecommendationRepository,
	queueRepo repositories.DiscoveryQueueRepository,
	searchRepo repositories.SupplementSearchRepository,
	bus providers.EventBus,
	metrics *observability.Metrics,
	cacheCfg config.CacheConfig,
	enrichCfg config.EnrichmentConfig,
) *RecommendationService {
	return &RecommendationService{
		normalizer: normalizer,
		store:      store,
		validator:  validator,
		enricher:   enricher,
		recRepo:    recRepo,
		queueRepo:  queueRepo,
		searchRepo: searchRepo,
		bus:        bus,
		metrics:    metrics,
		cacheCfg:   cacheCfg,
		enrichCfg:  enrichCfg,
	}
}

// Search resolves a free-text query to a recommendation or an async job
// handle.
func (s *RecommendationService) Search(ctx context.Context, rawQuery string, profile entities.UserProfile) (*SearchOutcome, error) {
	sanitized := guardrails.Sanitize(rawQuery)
	if screened := guardrails.Validate(sanitized); !screened.Valid {
		return nil, &apperrors.AppError{
			Type:        apperrors.ErrorTypeValidation,
			Message:     screened.Message,
			Suggestions: guardrails.SplitSuggestion(screened.Suggestion),
		}
	}

	norm := s.normalizer.Normalize(sanitized)
	queryHash := QueryHash(norm.NormalizedQuery)

	// Durable-store hit: refresh the cache entry and skip enrichment.
	if rec, err := s.recRepo.GetByQueryHash(ctx, queryHash); err == nil {
		if s.validator.IsValid(rec) {
			s.onCacheHit(ctx, rec)
			return &SearchOutcome{Recommendation: rec, Normalization: norm, CacheHit: true}, nil
		}
		log.Warn().Str("query_hash", queryHash).Msg("stored recommendation failed validation, re-enriching")
	} else if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		log.Warn().Err(err).Str("query_hash", queryHash).Msg("recommendation lookup failed")
	}

	supplementName := s.resolveCatalogName(ctx, norm)

	outcome, err := s.enrichAndPersist(ctx, norm, supplementName, profile)
	if err != nil {
		return nil, err
	}
	outcome.Normalization = norm
	return outcome, nil
}

// resolveCatalogName maps the normalized query to a catalog entry. An
// unknown term goes to the discovery queue so the worker can research it;
// the current request still proceeds with the normalized text.
func (s *RecommendationService) resolveCatalogName(ctx context.Context, norm *QueryNormalization) string {
	supplement, err := s.searchRepo.Lookup(ctx, norm.NormalizedQuery)
	if err == nil {
		return supplement.Name
	}

	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) && norm.Confidence < ConfidenceExact {
		if _, qErr := s.queueRepo.Enqueue(ctx, norm.OriginalQuery, norm.NormalizedQuery); qErr != nil {
			log.Warn().Err(qErr).Str("query", norm.NormalizedQuery).Msg("failed to enqueue discovery item")
		}
	} else if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		log.Warn().Err(err).Str("query", norm.NormalizedQuery).Msg("catalog lookup failed")
	}

	return norm.NormalizedQuery
}

func (s *RecommendationService) enrichAndPersist(ctx context.Context, norm *QueryNormalization, supplementName string, profile entities.UserProfile) (*SearchOutcome, error) {
	started := time.Now()
	result, err := s.enricher.Enrich(ctx, providers.EnrichmentRequest{
		SupplementName: supplementName,
		Profile:        profile,
		JobID:          uuid.NewString(),
	})
	s.recordEnrichment(ctx, started, err)
	if err != nil {
		return nil, err
	}

	if result.Job != nil {
		return &SearchOutcome{Job: result.Job}, nil
	}

	if err := s.Persist(ctx, norm.NormalizedQuery, result.Recommendation); err != nil {
		// The user still gets the recommendation; only durability suffered.
		log.Error().Err(err).Str("id", result.Recommendation.ID).Msg("failed to persist recommendation")
	}
	return &SearchOutcome{Recommendation: result.Recommendation}, nil
}

// Persist writes a validated recommendation everywhere it needs to be:
// the durable store, the cache (under the recommendation TTL policy),
// the catalog index, and the invalidation channel.
func (s *RecommendationService) Persist(ctx context.Context, normalizedQuery string, rec *entities.Recommendation) error {
	if !s.validator.IsValid(rec) {
		return apperrors.NewCacheInvalidError(entities.CacheKey(rec.ID))
	}

	queryHash := QueryHash(normalizedQuery)
	if err := s.recRepo.Upsert(ctx, queryHash, rec); err != nil {
		return err
	}

	if err := s.store.Set(ctx, rec.ID, rec, "", s.cacheCfg.RecommendationTTL); err != nil {
		log.Warn().Err(err).Str("id", rec.ID).Msg("failed to cache recommendation")
	}

	if err := s.searchRepo.Index(ctx, &entities.Supplement{
		ID:        rec.ID,
		Name:      rec.Category,
		CreatedAt: time.Now(),
	}); err != nil {
		log.Warn().Err(err).Str("id", rec.ID).Msg("failed to index supplement")
	}

	s.publishRefresh(ctx, rec.ID)
	return nil
}

// AwaitJob polls an async enrichment job until it completes, fails, or
// the poll ceiling elapses. onTick, if set, observes every poll result.
// There is no retry here: a failed job is final.
func (s *RecommendationService) AwaitJob(ctx context.Context, job *providers.AsyncJob, onTick func(*providers.PollResult)) (*entities.Recommendation, error) {
	interval := time.Duration(job.PollInterval) * time.Second
	if interval <= 0 {
		interval = s.enrichCfg.PollInterval
	}

	deadline := time.NewTimer(s.enrichCfg.MaxPollDuration)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, apperrors.NewTimeoutError("enrichment polling cancelled")
		case <-deadline.C:
			return nil, apperrors.NewTimeoutError("enrichment job did not finish in time")
		case <-ticker.C:
			if s.metrics != nil {
				s.metrics.PollTickCount.Add(ctx, 1)
			}

			poll, err := s.enricher.PollJob(ctx, job)
			if err != nil {
				return nil, err
			}
			if onTick != nil {
				onTick(poll)
			}

			switch poll.Status {
			case entities.JobStatusCompleted:
				if poll.Recommendation == nil {
					return nil, apperrors.NewEnrichmentError("job completed without a recommendation", nil)
				}
				return poll.Recommendation, nil
			case entities.JobStatusFailed:
				if poll.Error == "insufficient_data" {
					return nil, apperrors.NewInsufficientDataError("no scientific literature found", nil)
				}
				return nil, apperrors.NewEnrichmentError(poll.Error, nil)
			}
			// pending/processing: keep polling
		}
	}
}

func (s *RecommendationService) onCacheHit(ctx context.Context, rec *entities.Recommendation) {
	if err := s.recRepo.IncrementSearchCount(ctx, rec.ID); err != nil {
		log.Warn().Err(err).Str("id", rec.ID).Msg("failed to bump search count")
	}
	if err := s.store.Set(ctx, rec.ID, rec, "", s.cacheCfg.RecommendationTTL); err != nil {
		log.Warn().Err(err).Str("id", rec.ID).Msg("failed to refresh cache entry")
	}
}

func (s *RecommendationService) publishRefresh(ctx context.Context, id string) {
	if s.bus == nil {
		return
	}
	event := &entities.CacheEvent{
		ID:        uuid.NewString(),
		Key:       entities.CacheKey(id),
		Reason:    entities.CacheEventRefreshed,
		Timestamp: time.Now(),
	}
	if err := s.bus.Publish(ctx, events.InvalidationChannel, event); err != nil {
		log.Warn().Err(err).Str("key", event.Key).Msg("failed to publish cache event")
	}
}

func (s *RecommendationService) recordEnrichment(ctx context.Context, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = string(apperrors.ErrorTypeEnrichment)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			outcome = string(appErr.Type)
		}
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	s.metrics.EnrichmentCount.Add(ctx, 1, attrs)
	s.metrics.EnrichmentDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)
}
