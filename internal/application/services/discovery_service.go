package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	"github.com/suplementia/supplement-discovery/internal/domain/repositories"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// DiscoveryService drains the discovery queue: queries users asked for
// that the catalog could not answer. Items are claimed in search-count
// order, so popular unknowns get researched first. One item is processed
// at a time; the queue's claim semantics keep concurrent workers off
// each other's items.
type DiscoveryService struct {
	queueRepo       repositories.DiscoveryQueueRepository
	enricher        providers.EnrichmentProvider
	recommendations *RecommendationService
	idleDelay       time.Duration
}

// NewDiscoveryService creates a new discovery worker service
func NewDiscoveryService(
	queueRepo repositories.DiscoveryQueueRepository,
	enricher providers.EnrichmentProvider,
	recommendations *RecommendationService,
) *DiscoveryService {
	return &DiscoveryService{
		queueRepo:       queueRepo,
		enricher:        enricher,
		recommendations: recommendations,
		idleDelay:       30 * time.Second,
	}
}

// Run processes queue items until ctx is cancelled.
func (s *DiscoveryService) Run(ctx context.Context) error {
	log.Info().Msg("discovery worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("discovery worker stopped")
			return ctx.Err()
		default:
		}

		item, err := s.queueRepo.ClaimNext(ctx)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
				s.sleep(ctx, s.idleDelay)
				continue
			}
			log.Error().Err(err).Msg("failed to claim discovery item")
			s.sleep(ctx, s.idleDelay)
			continue
		}

		s.process(ctx, item)
	}
}

func (s *DiscoveryService) process(ctx context.Context, item *entities.DiscoveryItem) {
	logger := log.With().
		Str("item_id", item.ID).
		Str("query", item.NormalizedQuery).
		Int("search_count", item.SearchCount).
		Logger()
	logger.Info().Msg("researching discovery item")

	rec, err := s.research(ctx, item)
	if err != nil {
		logger.Warn().Err(err).Msg("discovery research failed")
		if failErr := s.queueRepo.Fail(ctx, item.ID, err.Error()); failErr != nil {
			logger.Error().Err(failErr).Msg("failed to mark discovery item failed")
		}
		return
	}

	if err := s.recommendations.Persist(ctx, item.NormalizedQuery, rec); err != nil {
		logger.Error().Err(err).Msg("failed to persist discovered recommendation")
		if failErr := s.queueRepo.Fail(ctx, item.ID, err.Error()); failErr != nil {
			logger.Error().Err(failErr).Msg("failed to mark discovery item failed")
		}
		return
	}

	if err := s.queueRepo.Complete(ctx, item.ID); err != nil {
		logger.Error().Err(err).Msg("failed to mark discovery item complete")
		return
	}
	logger.Info().Str("recommendation_id", rec.ID).Msg("discovery item resolved")
}

// research runs one enrichment for a queue item, following the async
// path to completion when the collaborator defers the work.
func (s *DiscoveryService) research(ctx context.Context, item *entities.DiscoveryItem) (*entities.Recommendation, error) {
	result, err := s.enricher.Enrich(ctx, providers.EnrichmentRequest{
		SupplementName: item.NormalizedQuery,
		Profile:        entities.DefaultProfile(),
		JobID:          uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	if result.Recommendation != nil {
		return result.Recommendation, nil
	}
	return s.recommendations.AwaitJob(ctx, result.Job, nil)
}

func (s *DiscoveryService) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
