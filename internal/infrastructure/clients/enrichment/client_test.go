package enrichment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/clients/enrichment"
	"github.com/suplementia/supplement-discovery/pkg/config"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

type stubChecker struct{ valid bool }

func (c stubChecker) IsValid(*entities.Recommendation) bool { return c.valid }

func testConfig(baseURL string) *config.EnrichmentConfig {
	return &config.EnrichmentConfig{
		BaseURL:         baseURL,
		SyncTimeout:     time.Second,
		PollInterval:    time.Millisecond,
		MaxPollDuration: 100 * time.Millisecond,
	}
}

func TestEnrich_SyncSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"recommendation": {
				"id": "rec-1",
				"category": "ashwagandha",
				"evidenceSummary": {"totalStudies": 42, "totalParticipants": 5000},
				"enrichmentMetadata": {"hasRealData": true, "studiesUsed": 25}
			}
		}`))
	}))
	defer server.Close()

	client := enrichment.NewClient(testConfig(server.URL), stubChecker{valid: true})

	result, err := client.Enrich(context.Background(), providers.EnrichmentRequest{SupplementName: "ashwagandha"})
	require.NoError(t, err)
	require.NotNil(t, result.Recommendation)
	assert.Equal(t, "rec-1", result.Recommendation.ID)
	assert.Equal(t, 42, result.Recommendation.EvidenceSummary.TotalStudies)
	assert.Nil(t, result.Job)
}

func TestEnrich_AcceptedReturnsJobHandle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"success": true, "status": "processing", "recommendation_id": "job-7", "estimatedTime": 45}`))
	}))
	defer server.Close()

	client := enrichment.NewClient(testConfig(server.URL), stubChecker{valid: true})

	result, err := client.Enrich(context.Background(), providers.EnrichmentRequest{SupplementName: "shilajit"})
	require.NoError(t, err)
	require.NotNil(t, result.Job)
	assert.Equal(t, "job-7", result.Job.JobID)
	assert.Equal(t, 2, result.Job.PollInterval, "missing poll interval falls back to the default")
}

// A query with no scientific backing is a normal outcome. It must come
// back typed as insufficient data on every attempt and must not open the
// breaker, or one run of obscure queries would take the whole client down.
func TestEnrich_InsufficientDataDoesNotTripBreaker(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "insufficient_data", "message": "no literature found", "suggestion": "omega-3, magnesium"}`))
	}))
	defer server.Close()

	client := enrichment.NewClient(testConfig(server.URL), stubChecker{valid: true})

	for i := 0; i < 8; i++ {
		_, err := client.Enrich(context.Background(), providers.EnrichmentRequest{SupplementName: "fadogia"})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInsufficientData),
			"attempt %d: got %v", i+1, err)
	}

	var appErr *apperrors.AppError
	_, err := client.Enrich(context.Background(), providers.EnrichmentRequest{SupplementName: "fadogia"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"omega-3", "magnesium"}, appErr.Suggestions)
	assert.Equal(t, int64(9), hits.Load(), "every attempt must reach the collaborator")
}

func TestEnrich_FabricatedPayloadIsInsufficientData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "recommendation": {"id": "rec-2", "category": "x", "evidenceSummary": {"totalStudies": 99}}}`))
	}))
	defer server.Close()

	client := enrichment.NewClient(testConfig(server.URL), stubChecker{valid: false})

	_, err := client.Enrich(context.Background(), providers.EnrichmentRequest{SupplementName: "x"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInsufficientData))
}

func TestEnrich_ServerFaultsTripBreaker(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := enrichment.NewClient(testConfig(server.URL), stubChecker{valid: true})

	for i := 0; i < 7; i++ {
		_, err := client.Enrich(context.Background(), providers.EnrichmentRequest{SupplementName: "ashwagandha"})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeEnrichment))
	}

	assert.Equal(t, int64(5), hits.Load(), "open breaker sheds requests after five consecutive faults")
}

func TestEnrich_SyncTimeoutFallsBackToAsync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("mode") == "async" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"success": true, "recommendation_id": "job-slow", "pollInterval": 2}`))
			return
		}
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.SyncTimeout = 50 * time.Millisecond
	client := enrichment.NewClient(cfg, stubChecker{valid: true})

	result, err := client.Enrich(context.Background(), providers.EnrichmentRequest{SupplementName: "ashwagandha"})
	require.NoError(t, err)
	require.NotNil(t, result.Job)
	assert.Equal(t, "job-slow", result.Job.JobID)
}

func TestPollJob_ReportsProgressAndCompletion(t *testing.T) {
	var polls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if polls.Add(1) == 1 {
			w.Write([]byte(`{"status": "processing", "progress": 40}`))
			return
		}
		w.Write([]byte(`{
			"status": "completed",
			"recommendation": {
				"id": "rec-3",
				"category": "ashwagandha",
				"evidenceSummary": {"totalStudies": 12},
				"enrichmentMetadata": {"hasRealData": true, "studiesUsed": 12}
			}
		}`))
	}))
	defer server.Close()

	client := enrichment.NewClient(testConfig(server.URL), stubChecker{valid: true})
	job := &providers.AsyncJob{JobID: "rec-3"}

	first, err := client.PollJob(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusProcessing, first.Status)
	assert.Equal(t, float64(40), first.Progress)

	second, err := client.PollJob(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusCompleted, second.Status)
	require.NotNil(t, second.Recommendation)
	assert.Equal(t, "rec-3", second.Recommendation.ID)
}
