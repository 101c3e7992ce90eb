package providers

import (
	"context"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// cache invalidation events across processes.
type EventBus interface {
	// Publish publishes an event to all subscribers on a channel
	Publish(ctx context.Context, channel string, event *entities.CacheEvent) error

	// Subscribe subscribes to events on a channel. The returned channel
	// is closed when ctx is cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.CacheEvent, error)

	// Close shuts down the bus
	Close() error
}
