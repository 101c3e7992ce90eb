package repositories

import (
	"context"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
)

// SupplementSearchRepository is the catalog search boundary. Lookup runs
// before any enrichment call so known supplements resolve without
// touching the collaborator.
type SupplementSearchRepository interface {
	// Lookup resolves a normalized query to a catalog entry, trying an
	// exact name match first and a fuzzy match second.
	Lookup(ctx context.Context, query string) (*entities.Supplement, error)

	Index(ctx context.Context, supplement *entities.Supplement) error
	Delete(ctx context.Context, id string) error
}
