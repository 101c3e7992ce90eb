package repositories

import (
	"context"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
)

// RecommendationRepository defines the durable store for recommendations.
// It is the bottom tier behind the in-memory and Redis caches.
type RecommendationRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Recommendation, error)
	GetByQueryHash(ctx context.Context, queryHash string) (*entities.Recommendation, error)
	Upsert(ctx context.Context, queryHash string, rec *entities.Recommendation) error
	IncrementSearchCount(ctx context.Context, id string) error
}
