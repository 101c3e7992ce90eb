package repositories

import (
	"context"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
)

// DiscoveryQueueRepository persists the queue of unknown supplements
// awaiting research. Enqueueing the same normalized query again bumps
// its search count instead of creating a duplicate.
type DiscoveryQueueRepository interface {
	Enqueue(ctx context.Context, query, normalizedQuery string) (*entities.DiscoveryItem, error)

	// ClaimNext atomically moves the highest-priority pending item to
	// processing and returns it. A not-found error means the queue is empty.
	ClaimNext(ctx context.Context) (*entities.DiscoveryItem, error)

	Complete(ctx context.Context, id string) error
	Fail(ctx context.Context, id string, reason string) error
}
