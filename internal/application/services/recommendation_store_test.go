package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

func newTestStore(cache *stubCache, at time.Time) *RecommendationStore {
	store := NewRecommendationStore(cache, NewRecommendationValidator())
	store.now = func() time.Time { return at }
	return store
}

func TestRecommendationStore_RoundTrip(t *testing.T) {
	cache := newStubCache()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(cache, now)

	rec := validRecommendation("rec-1")
	require.NoError(t, store.Set(context.Background(), rec.ID, rec, "job-1", 7*24*time.Hour))

	entry, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, entry.Recommendation.ID)
	assert.Equal(t, "job-1", entry.JobID)
	assert.Equal(t, now.UnixMilli(), entry.Timestamp)
}

func TestRecommendationStore_FreshnessIsMonotonic(t *testing.T) {
	cache := newStubCache()
	writtenAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour

	store := newTestStore(cache, writtenAt)
	rec := validRecommendation("rec-1")
	require.NoError(t, store.Set(context.Background(), rec.ID, rec, "", ttl))

	// Any read within the TTL window returns the same recommendation.
	for _, age := range []time.Duration{0, time.Hour, 23 * time.Hour, ttl - time.Millisecond} {
		store.now = func() time.Time { return writtenAt.Add(age) }
		entry, err := store.Get(context.Background(), rec.ID)
		require.NoError(t, err, "age %v should be fresh", age)
		assert.Equal(t, rec.ID, entry.Recommendation.ID)
	}

	// At and past the TTL the entry reads as expired.
	for _, age := range []time.Duration{ttl, 25 * time.Hour, 30 * 24 * time.Hour} {
		store.now = func() time.Time { return writtenAt.Add(age) }
		_, err := store.Get(context.Background(), rec.ID)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCacheExpired), "age %v should be expired", age)
	}
}

func TestRecommendationStore_CorruptedEntryReadsAsUnavailable(t *testing.T) {
	cache := newStubCache()
	store := newTestStore(cache, time.Now())

	cache.data[entities.CacheKey("rec-1")] = []byte("{definitely not json")

	entry, err := store.Get(context.Background(), "rec-1")
	assert.Nil(t, entry)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCacheCorrupted))
	assert.True(t, apperrors.IsCacheUnavailable(err))
}

func TestRecommendationStore_MissingKey(t *testing.T) {
	store := newTestStore(newStubCache(), time.Now())

	_, err := store.Get(context.Background(), "never-written")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCacheMiss))
}

func TestRecommendationStore_InvalidRecommendationRejected(t *testing.T) {
	cache := newStubCache()
	store := newTestStore(cache, time.Now())

	// Fabricated-data signature: claims studies, no provenance at all.
	rec := &entities.Recommendation{
		ID:              "rec-1",
		Category:        "ashwagandha",
		EvidenceSummary: entities.EvidenceSummary{TotalStudies: 30},
	}
	require.NoError(t, store.Set(context.Background(), rec.ID, rec, "", time.Hour))

	_, err := store.Get(context.Background(), rec.ID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCacheInvalid))
}

func TestRecommendationStore_RewriteIsIdempotent(t *testing.T) {
	cache := newStubCache()
	first := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(cache, first)

	rec := validRecommendation("rec-1")
	require.NoError(t, store.Set(context.Background(), rec.ID, rec, "", time.Hour))
	entryOne, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)

	store.now = func() time.Time { return first.Add(time.Minute) }
	require.NoError(t, store.Set(context.Background(), rec.ID, rec, "", time.Hour))
	entryTwo, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)

	// Same payload both times; only the timestamp moved.
	assert.Equal(t, entryOne.Recommendation, entryTwo.Recommendation)
	assert.Equal(t, entryOne.TTL, entryTwo.TTL)
	assert.NotEqual(t, entryOne.Timestamp, entryTwo.Timestamp)
}

func TestRecommendationStore_TransportFailureReadsAsMiss(t *testing.T) {
	cache := newStubCache()
	cache.getErr = apperrors.NewInternalError("connection refused", nil)
	store := newTestStore(cache, time.Now())

	_, err := store.Get(context.Background(), "rec-1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCacheMiss))
}
