package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

func TestDiscoveryService_ProcessesQueuedItem(t *testing.T) {
	rec := validRecommendation("rec-berberine")
	enricher := &stubEnricher{result: &providers.EnrichmentResult{Recommendation: rec}}
	f := newServiceFixture(t, enricher)

	worker := NewDiscoveryService(f.queueRepo, enricher, f.orchestrator.recommendations)
	item := &entities.DiscoveryItem{ID: "item-1", Query: "Berberine", NormalizedQuery: "berberine"}

	worker.process(context.Background(), item)

	assert.Equal(t, entities.JobStatusCompleted, f.queueRepo.statuses["item-1"])
	assert.Equal(t, 1, f.recRepo.upserts)
}

func TestDiscoveryService_MarksFailedOnEnrichmentError(t *testing.T) {
	enricher := &stubEnricher{err: apperrors.NewEnrichmentError("upstream down", nil)}
	f := newServiceFixture(t, enricher)

	worker := NewDiscoveryService(f.queueRepo, enricher, f.orchestrator.recommendations)
	item := &entities.DiscoveryItem{ID: "item-1", NormalizedQuery: "berberine"}

	worker.process(context.Background(), item)

	assert.Equal(t, entities.JobStatusFailed, f.queueRepo.statuses["item-1"])
	assert.Zero(t, f.recRepo.upserts)
}

func TestDiscoveryService_FollowsAsyncPath(t *testing.T) {
	rec := validRecommendation("rec-async")
	enricher := &stubEnricher{
		result: &providers.EnrichmentResult{Job: &providers.AsyncJob{JobID: "rec-async"}},
		pollResults: []*providers.PollResult{
			{Status: entities.JobStatusCompleted, Recommendation: rec},
		},
	}
	f := newServiceFixture(t, enricher)

	worker := NewDiscoveryService(f.queueRepo, enricher, f.orchestrator.recommendations)
	item := &entities.DiscoveryItem{ID: "item-1", NormalizedQuery: "berberine"}

	worker.process(context.Background(), item)

	assert.Equal(t, entities.JobStatusCompleted, f.queueRepo.statuses["item-1"])
	assert.Equal(t, 1, enricher.pollCalls)
}

func TestDiscoveryService_RunStopsOnCancel(t *testing.T) {
	f := newServiceFixture(t, &stubEnricher{})
	worker := NewDiscoveryService(f.queueRepo, f.enricher, f.orchestrator.recommendations)
	worker.idleDelay = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := worker.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
