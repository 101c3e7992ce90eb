package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/repositories"
	tsclient "github.com/suplementia/supplement-discovery/internal/infrastructure/clients/typesense"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// TypesenseAdapter implements supplement catalog search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements SupplementSearchRepository
var _ repositories.SupplementSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Lookup resolves a normalized query to a catalog entry. An exact name
// match wins; otherwise the best fuzzy hit across name, scientific name
// and common names is returned.
func (a *TypesenseAdapter) Lookup(ctx context.Context, query string) (*entities.Supplement, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("lookup query cannot be empty")
	}

	searchParams := &api.SearchCollectionParams{
		Q:                   pointer.String(query),
		QueryBy:             pointer.String("name,scientific_name,common_names"),
		Prefix:              pointer.String("false"),
		NumTypos:            pointer.String("2"),
		PerPage:             pointer.Int(5),
		SortBy:              pointer.String("_text_match:desc,search_count:desc"),
		DropTokensThreshold: pointer.Int(0),
	}

	result, err := a.client.Client().
		Collection(tsclient.SupplementsCollection).
		Documents().
		Search(ctx, searchParams)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to search supplements", err)
	}

	if result.Hits == nil || len(*result.Hits) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no catalog entry for %q", query))
	}

	hits := *result.Hits
	for _, hit := range hits {
		s := documentToSupplement(*hit.Document)
		if strings.EqualFold(s.Name, query) {
			return s, nil
		}
	}
	return documentToSupplement(*hits[0].Document), nil
}

// Index indexes a supplement
func (a *TypesenseAdapter) Index(ctx context.Context, supplement *entities.Supplement) error {
	document := map[string]interface{}{
		"id":              supplement.ID,
		"name":            supplement.Name,
		"scientific_name": supplement.ScientificName,
		"common_names":    supplement.CommonNames,
		"tags":            supplement.Tags,
		"search_count":    supplement.SearchCount,
		"created_at":      supplement.CreatedAt.Unix(),
	}

	_, err := a.client.Client().
		Collection(tsclient.SupplementsCollection).
		Documents().
		Upsert(ctx, document)
	if err != nil {
		return apperrors.NewInternalError("failed to index supplement", err)
	}

	return nil
}

// Delete removes a supplement from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().
		Collection(tsclient.SupplementsCollection).
		Document(id).
		Delete(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to delete supplement from index", err)
	}
	return nil
}

// documentToSupplement reconstructs a Supplement from a Typesense hit.
// Typesense returns map[string]interface{}, so every field is cast safely.
func documentToSupplement(doc map[string]interface{}) *entities.Supplement {
	s := &entities.Supplement{}

	if v, ok := doc["id"].(string); ok {
		s.ID = v
	}
	if v, ok := doc["name"].(string); ok {
		s.Name = v
	}
	if v, ok := doc["scientific_name"].(string); ok {
		s.ScientificName = v
	}
	s.CommonNames = toStringSlice(doc["common_names"])
	s.Tags = toStringSlice(doc["tags"])
	if v, ok := doc["search_count"].(float64); ok {
		s.SearchCount = int(v)
	}

	return s
}

func toStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
