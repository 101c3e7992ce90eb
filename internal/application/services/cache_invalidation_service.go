package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/suplementia/supplement-discovery/internal/adapters/events"
	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
)

// MemoryInvalidator drops keys from a process-local cache tier. The
// tiered adapter satisfies this.
type MemoryInvalidator interface {
	Invalidate(ctx context.Context, key string)
}

// CacheInvalidationService keeps the in-process cache tier coherent
// across instances: when one process refreshes or deletes a shared
// entry, every other process drops its local copy. The shared tier is
// left alone; its entries already carry the authoritative TTL.
type CacheInvalidationService struct {
	invalidator MemoryInvalidator
	eventBus    providers.EventBus
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(invalidator MemoryInvalidator, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		invalidator: invalidator,
		eventBus:    eventBus,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins listening for invalidation events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, events.InvalidationChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to cache invalidation events: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.CacheEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.CacheEvent) {
	log.Debug().
		Str("event_id", event.ID).
		Str("key", event.Key).
		Str("reason", string(event.Reason)).
		Msg("invalidating local cache tier")

	s.invalidator.Invalidate(s.ctx, event.Key)
}
