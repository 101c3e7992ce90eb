package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/observability"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// promotionTTL bounds how long a value promoted from the shared tier may
// live in process memory before it is re-checked against the source.
const promotionTTL = 5 * time.Minute

// TieredAdapter layers a process-local memory tier in front of a shared
// tier. Reads try memory first and promote shared hits; writes and
// deletes go through to both tiers.
type TieredAdapter struct {
	memory  *MemoryAdapter
	shared  providers.CacheProvider
	metrics *observability.Metrics
}

// NewTieredAdapter creates a tiered cache over the given memory and
// shared tiers. metrics may be nil.
func NewTieredAdapter(memory *MemoryAdapter, shared providers.CacheProvider, metrics *observability.Metrics) *TieredAdapter {
	return &TieredAdapter{
		memory:  memory,
		shared:  shared,
		metrics: metrics,
	}
}

// Get retrieves a value, trying the memory tier before the shared tier.
func (a *TieredAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := a.memory.Get(ctx, key)
	if err == nil {
		a.recordHit(ctx, "memory")
		return value, nil
	}
	a.recordMiss(ctx, "memory")

	value, err = a.shared.Get(ctx, key)
	if err != nil {
		if apperrors.IsCacheUnavailable(err) {
			a.recordMiss(ctx, "shared")
		}
		return nil, err
	}
	a.recordHit(ctx, "shared")

	// Promote so the next read in this process stays local.
	_ = a.memory.Set(ctx, key, value, promotionTTL)
	return value, nil
}

// Set writes through to both tiers.
func (a *TieredAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	memoryTTL := ttl
	if memoryTTL <= 0 || memoryTTL > promotionTTL {
		memoryTTL = promotionTTL
	}
	if err := a.memory.Set(ctx, key, value, memoryTTL); err != nil {
		return err
	}
	return a.shared.Set(ctx, key, value, ttl)
}

// Delete removes the key from both tiers. The memory tier is cleared
// even if the shared tier fails.
func (a *TieredAdapter) Delete(ctx context.Context, key string) error {
	_ = a.memory.Delete(ctx, key)
	return a.shared.Delete(ctx, key)
}

// Exists checks the memory tier before the shared tier.
func (a *TieredAdapter) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := a.memory.Exists(ctx, key)
	if err == nil && ok {
		return true, nil
	}
	return a.shared.Exists(ctx, key)
}

// Invalidate drops a key from the memory tier only. Called when another
// process announces it has refreshed or deleted the shared copy.
func (a *TieredAdapter) Invalidate(ctx context.Context, key string) {
	if key == "" {
		a.memory.Purge()
		return
	}
	_ = a.memory.Delete(ctx, key)
}

func (a *TieredAdapter) recordHit(ctx context.Context, tier string) {
	if a.metrics == nil {
		return
	}
	a.metrics.CacheHitCount.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}

func (a *TieredAdapter) recordMiss(ctx context.Context, tier string) {
	if a.metrics == nil {
		return
	}
	a.metrics.CacheMissCount.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}
