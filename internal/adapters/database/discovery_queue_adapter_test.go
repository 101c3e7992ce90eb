package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

func TestDiscoveryQueueAdapter_Enqueue(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewDiscoveryQueueAdapter(client)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "search_count", "status", "created_at"}).
		AddRow("item-1", 3, "pending", now)
	mock.ExpectQuery(`INSERT INTO "discovery_queue"`).WillReturnRows(rows)

	item, err := adapter.Enqueue(context.Background(), "Aswaganda", "ashwagandha")
	require.NoError(t, err)
	assert.Equal(t, "item-1", item.ID)
	assert.Equal(t, 3, item.SearchCount)
	assert.Equal(t, entities.JobStatusPending, item.Status)
	assert.Equal(t, "ashwagandha", item.NormalizedQuery)
}

func TestDiscoveryQueueAdapter_ClaimNext(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewDiscoveryQueueAdapter(client)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "query", "normalized_query", "search_count", "status", "created_at", "updated_at",
	}).AddRow("item-1", "Aswaganda", "ashwagandha", 7, "processing", now, now)
	mock.ExpectQuery(`UPDATE discovery_queue SET status`).WillReturnRows(rows)

	item, err := adapter.ClaimNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusProcessing, item.Status)
	assert.Equal(t, 7, item.SearchCount)
}

func TestDiscoveryQueueAdapter_ClaimNext_EmptyQueue(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewDiscoveryQueueAdapter(client)

	mock.ExpectQuery(`UPDATE discovery_queue SET status`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "query", "normalized_query", "search_count", "status", "created_at", "updated_at",
		}))

	item, err := adapter.ClaimNext(context.Background())
	assert.Nil(t, item)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestDiscoveryQueueAdapter_Complete(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewDiscoveryQueueAdapter(client)

	mock.ExpectExec(`UPDATE "discovery_queue"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.Complete(context.Background(), "item-1"))
}

func TestDiscoveryQueueAdapter_Fail_NotFound(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewDiscoveryQueueAdapter(client)

	mock.ExpectExec(`UPDATE "discovery_queue"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Fail(context.Background(), "missing", "pubmed returned nothing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
