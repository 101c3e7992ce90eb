package entities

import "time"

// CacheKeyPrefix prefixes every persisted recommendation cache key.
const CacheKeyPrefix = "recommendation_"

// CacheEntry wraps a Recommendation for storage. Timestamp and TTL are
// milliseconds since epoch / milliseconds to live, matching the persisted
// wire format.
type CacheEntry struct {
	Recommendation *Recommendation `json:"recommendation"`
	JobID          string          `json:"jobId,omitempty"`
	Timestamp      int64           `json:"timestamp"`
	TTL            int64           `json:"ttl"`
}

// NewCacheEntry builds an entry stamped at now with the given TTL.
func NewCacheEntry(rec *Recommendation, jobID string, now time.Time, ttl time.Duration) *CacheEntry {
	return &CacheEntry{
		Recommendation: rec,
		JobID:          jobID,
		Timestamp:      now.UnixMilli(),
		TTL:            ttl.Milliseconds(),
	}
}

// Age returns how long ago the entry was written.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-e.Timestamp) * time.Millisecond
}

// IsFresh reports whether the entry's age is still below its TTL.
func (e *CacheEntry) IsFresh(now time.Time) bool {
	return e.Age(now) < time.Duration(e.TTL)*time.Millisecond
}

// CacheKey returns the storage key for a recommendation id.
func CacheKey(id string) string {
	return CacheKeyPrefix + id
}
