package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/repositories"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// DiscoveryQueueAdapter implements DiscoveryQueueRepository over Postgres.
type DiscoveryQueueAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDiscoveryQueueAdapter creates a new discovery queue adapter
func NewDiscoveryQueueAdapter(client *postgres.Client) repositories.DiscoveryQueueRepository {
	return &DiscoveryQueueAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Enqueue adds an unknown query to the discovery queue, or bumps the
// search count of the existing entry for the same normalized query.
func (a *DiscoveryQueueAdapter) Enqueue(ctx context.Context, query, normalizedQuery string) (*entities.DiscoveryItem, error) {
	now := time.Now()
	item := &entities.DiscoveryItem{
		ID:              uuid.NewString(),
		Query:           query,
		NormalizedQuery: normalizedQuery,
		SearchCount:     1,
		Status:          entities.JobStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	record := goqu.Record{
		"id":               item.ID,
		"query":            item.Query,
		"normalized_query": item.NormalizedQuery,
		"search_count":     item.SearchCount,
		"status":           string(item.Status),
		"created_at":       item.CreatedAt,
		"updated_at":       item.UpdatedAt,
	}

	insertSQL, args, err := a.db.Insert("discovery_queue").
		Rows(record).
		OnConflict(goqu.DoUpdate("normalized_query", goqu.Record{
			"search_count": goqu.L("discovery_queue.search_count + 1"),
			"updated_at":   now,
		})).
		Returning("id", "search_count", "status", "created_at").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build enqueue query", err)
	}

	var status string
	err = a.client.DB().QueryRowContext(ctx, insertSQL, args...).Scan(
		&item.ID, &item.SearchCount, &status, &item.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to enqueue discovery item", err)
	}
	item.Status = entities.JobStatus(status)
	return item, nil
}

// ClaimNext atomically claims the pending item with the highest search
// count. Concurrent workers never claim the same row.
func (a *DiscoveryQueueAdapter) ClaimNext(ctx context.Context) (*entities.DiscoveryItem, error) {
	// goqu has no FOR UPDATE SKIP LOCKED inside a CTE, so this one stays
	// hand-written.
	claimSQL := `
		UPDATE discovery_queue SET status = $1, updated_at = $2
		WHERE id = (
			SELECT id FROM discovery_queue
			WHERE status = $3
			ORDER BY search_count DESC, created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, query, normalized_query, search_count, status, created_at, updated_at`

	item := &entities.DiscoveryItem{}
	var status string
	err := a.client.DB().QueryRowContext(ctx, claimSQL,
		string(entities.JobStatusProcessing), time.Now(), string(entities.JobStatusPending),
	).Scan(
		&item.ID, &item.Query, &item.NormalizedQuery, &item.SearchCount,
		&status, &item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("discovery queue is empty")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to claim discovery item", err)
	}
	item.Status = entities.JobStatus(status)
	return item, nil
}

// Complete marks a claimed item as done
func (a *DiscoveryQueueAdapter) Complete(ctx context.Context, id string) error {
	return a.setStatus(ctx, id, entities.JobStatusCompleted, "")
}

// Fail marks a claimed item as failed and records the reason
func (a *DiscoveryQueueAdapter) Fail(ctx context.Context, id string, reason string) error {
	return a.setStatus(ctx, id, entities.JobStatusFailed, reason)
}

func (a *DiscoveryQueueAdapter) setStatus(ctx context.Context, id string, status entities.JobStatus, reason string) error {
	record := goqu.Record{
		"status":     string(status),
		"updated_at": time.Now(),
	}
	if reason != "" {
		record["last_error"] = reason
	}

	query, args, err := a.db.Update("discovery_queue").
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build status query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update discovery item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("discovery item with id %s not found", id))
	}
	return nil
}
