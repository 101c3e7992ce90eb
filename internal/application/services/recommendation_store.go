package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// RecommendationStore persists recommendation cache entries. Every read
// failure comes back as a typed error; a corrupted stored value is
// logged and reported like a miss, never allowed to escape as a parse
// error. Entries are never actively evicted here: staleness is detected
// lazily on read and left to the backing store's own TTL.
type RecommendationStore struct {
	cache     providers.CacheProvider
	validator *RecommendationValidator
	now       func() time.Time
}

// NewRecommendationStore creates a new store over the given cache.
func NewRecommendationStore(cache providers.CacheProvider, validator *RecommendationValidator) *RecommendationStore {
	return &RecommendationStore{
		cache:     cache,
		validator: validator,
		now:       time.Now,
	}
}

// Get reads and checks the entry for a recommendation id. The error is
// one of cache-miss, cache-corrupted, cache-expired or cache-invalid;
// callers that don't care which can use errors.IsCacheUnavailable.
func (s *RecommendationStore) Get(ctx context.Context, id string) (*entities.CacheEntry, error) {
	key := entities.CacheKey(id)

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if apperrors.IsCacheUnavailable(err) {
			return nil, err
		}
		// Transport failure toward the cache reads as a miss.
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, apperrors.NewCacheMissError(key)
	}

	var entry entities.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupted cache entry")
		return nil, apperrors.NewCacheCorruptedError(key, err)
	}

	if !entry.IsFresh(s.now()) {
		return nil, apperrors.NewCacheExpiredError(key)
	}
	if !s.validator.IsValid(entry.Recommendation) {
		return nil, apperrors.NewCacheInvalidError(key)
	}

	return &entry, nil
}

// GetRecommendation is Get minus the envelope.
func (s *RecommendationStore) GetRecommendation(ctx context.Context, id string) (*entities.Recommendation, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return entry.Recommendation, nil
}

// Set overwrites the entry for a recommendation id. TTL is a parameter
// of the write: freshly fetched recommendations and shared-link entries
// carry different policies, chosen by the caller.
func (s *RecommendationStore) Set(ctx context.Context, id string, rec *entities.Recommendation, jobID string, ttl time.Duration) error {
	entry := entities.NewCacheEntry(rec, jobID, s.now(), ttl)

	data, err := json.Marshal(entry)
	if err != nil {
		return apperrors.NewInternalError("failed to encode cache entry", err)
	}

	return s.cache.Set(ctx, entities.CacheKey(id), data, ttl)
}

// Delete removes the entry for a recommendation id.
func (s *RecommendationStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, entities.CacheKey(id))
}
