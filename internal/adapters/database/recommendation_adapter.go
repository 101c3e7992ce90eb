package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/repositories"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// RecommendationAdapter implements RecommendationRepository over Postgres.
// The recommendation body is stored as a JSONB document; query_hash and
// search_count are columns so lookups and priority ranking stay indexed.
type RecommendationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRecommendationAdapter creates a new recommendation adapter
func NewRecommendationAdapter(client *postgres.Client) repositories.RecommendationRepository {
	return &RecommendationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a recommendation by ID
func (a *RecommendationAdapter) GetByID(ctx context.Context, id string) (*entities.Recommendation, error) {
	return a.getByField(ctx, "id", id)
}

// GetByQueryHash retrieves a recommendation by its normalized query hash
func (a *RecommendationAdapter) GetByQueryHash(ctx context.Context, queryHash string) (*entities.Recommendation, error) {
	return a.getByField(ctx, "query_hash", queryHash)
}

func (a *RecommendationAdapter) getByField(ctx context.Context, field, value string) (*entities.Recommendation, error) {
	query, args, err := a.db.Select("id", "body", "created_at").
		From("recommendations").
		Where(goqu.Ex{field: value}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var id string
	var body []byte
	var createdAt time.Time

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&id, &body, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("recommendation with %s %s not found", field, value))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get recommendation", err)
	}

	rec := &entities.Recommendation{}
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, apperrors.NewInternalError("failed to decode recommendation body", err)
	}
	rec.ID = id
	rec.CreatedAt = createdAt
	return rec, nil
}

// Upsert inserts a recommendation or replaces the body of an existing
// row with the same query hash.
func (a *RecommendationAdapter) Upsert(ctx context.Context, queryHash string, rec *entities.Recommendation) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return apperrors.NewInternalError("failed to encode recommendation", err)
	}

	now := time.Now()
	record := goqu.Record{
		"id":         rec.ID,
		"query_hash": queryHash,
		"category":   rec.Category,
		"body":       body,
		"created_at": now,
		"updated_at": now,
	}

	query, args, err := a.db.Insert("recommendations").
		Rows(record).
		OnConflict(goqu.DoUpdate("query_hash", goqu.Record{
			"body":       body,
			"category":   rec.Category,
			"updated_at": now,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert recommendation", err)
	}
	return nil
}

// IncrementSearchCount bumps the popularity counter for a recommendation
func (a *RecommendationAdapter) IncrementSearchCount(ctx context.Context, id string) error {
	query, args, err := a.db.Update("recommendations").
		Set(goqu.Record{
			"search_count":     goqu.L("search_count + 1"),
			"last_searched_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to increment search count", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("recommendation with id %s not found", id))
	}
	return nil
}
