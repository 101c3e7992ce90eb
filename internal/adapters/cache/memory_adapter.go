package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter implements the CacheProvider interface with a bounded
// in-process LRU. Entries carry their own expiry; expired entries are
// dropped lazily on read.
type MemoryAdapter struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryAdapter creates a new in-memory cache adapter with the given
// capacity.
func NewMemoryAdapter(capacity int) (*MemoryAdapter, error) {
	if capacity <= 0 {
		capacity = 1024
	}
	entries, err := lru.New[string, memoryEntry](capacity)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create memory cache", err)
	}
	return &MemoryAdapter{
		entries: entries,
		now:     time.Now,
	}, nil
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := a.entries.Get(key)
	if !ok {
		return nil, apperrors.NewCacheMissError(key)
	}
	if !entry.expiresAt.IsZero() && a.now().After(entry.expiresAt) {
		a.entries.Remove(key)
		return nil, apperrors.NewCacheExpiredError(key)
	}
	return entry.value, nil
}

// Set stores a value in cache with expiration. A non-positive ttl means
// the entry only ages out by LRU eviction.
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = a.now().Add(ttl)
	}
	a.entries.Add(key, entry)
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.entries.Remove(key)
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.Get(ctx, key)
	if err != nil {
		if apperrors.IsCacheUnavailable(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Purge drops every entry. Used when an invalidation event arrives
// without a key.
func (a *MemoryAdapter) Purge() {
	a.entries.Purge()
}
