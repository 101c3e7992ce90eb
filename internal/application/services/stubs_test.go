package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	"github.com/suplementia/supplement-discovery/pkg/config"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// stubCache is an in-memory CacheProvider for tests. Access is locked
// because deferred enrichment writes from a background goroutine.
type stubCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (c *stubCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	value, ok := c.data[key]
	if !ok {
		return nil, apperrors.NewCacheMissError(key)
	}
	return value, nil
}

func (c *stubCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *stubCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *stubCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *stubCache) entry(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

// stubEnricher counts calls and plays back canned responses.
type stubEnricher struct {
	mu          sync.Mutex
	result      *providers.EnrichmentResult
	err         error
	calls       int
	pollResults []*providers.PollResult
	pollCalls   int
}

func (e *stubEnricher) Enrich(ctx context.Context, _ providers.EnrichmentRequest) (*providers.EnrichmentResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("enrichment request cancelled")
	}
	e.calls++
	return e.result, e.err
}

func (e *stubEnricher) PollJob(_ context.Context, _ *providers.AsyncJob) (*providers.PollResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.pollCalls
	e.pollCalls++
	if idx >= len(e.pollResults) {
		return &providers.PollResult{Status: entities.JobStatusProcessing}, nil
	}
	return e.pollResults[idx], nil
}

func (e *stubEnricher) pollCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pollCalls
}

// stubRecommendationRepo is an in-memory RecommendationRepository.
type stubRecommendationRepo struct {
	mu      sync.Mutex
	byHash  map[string]*entities.Recommendation
	byID    map[string]*entities.Recommendation
	upserts int
}

func newStubRecommendationRepo() *stubRecommendationRepo {
	return &stubRecommendationRepo{
		byHash: make(map[string]*entities.Recommendation),
		byID:   make(map[string]*entities.Recommendation),
	}
}

func (r *stubRecommendationRepo) GetByID(_ context.Context, id string) (*entities.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.byID[id]; ok {
		return rec, nil
	}
	return nil, apperrors.NewNotFoundError("recommendation not found")
}

func (r *stubRecommendationRepo) GetByQueryHash(_ context.Context, hash string) (*entities.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.byHash[hash]; ok {
		return rec, nil
	}
	return nil, apperrors.NewNotFoundError("recommendation not found")
}

func (r *stubRecommendationRepo) Upsert(_ context.Context, hash string, rec *entities.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.byHash[hash] = rec
	r.byID[rec.ID] = rec
	return nil
}

func (r *stubRecommendationRepo) IncrementSearchCount(_ context.Context, _ string) error {
	return nil
}

func (r *stubRecommendationRepo) upsertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upserts
}

// stubQueueRepo records enqueued discovery items.
type stubQueueRepo struct {
	enqueued []string
	items    []*entities.DiscoveryItem
	statuses map[string]entities.JobStatus
}

func newStubQueueRepo() *stubQueueRepo {
	return &stubQueueRepo{statuses: make(map[string]entities.JobStatus)}
}

func (q *stubQueueRepo) Enqueue(_ context.Context, query, normalized string) (*entities.DiscoveryItem, error) {
	q.enqueued = append(q.enqueued, normalized)
	return &entities.DiscoveryItem{ID: "queued-" + normalized, Query: query, NormalizedQuery: normalized}, nil
}

func (q *stubQueueRepo) ClaimNext(_ context.Context) (*entities.DiscoveryItem, error) {
	if len(q.items) == 0 {
		return nil, apperrors.NewNotFoundError("discovery queue is empty")
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, nil
}

func (q *stubQueueRepo) Complete(_ context.Context, id string) error {
	q.statuses[id] = entities.JobStatusCompleted
	return nil
}

func (q *stubQueueRepo) Fail(_ context.Context, id string, _ string) error {
	q.statuses[id] = entities.JobStatusFailed
	return nil
}

// stubSearchRepo is an in-memory SupplementSearchRepository.
type stubSearchRepo struct {
	byName  map[string]*entities.Supplement
	indexed []string
}

func newStubSearchRepo() *stubSearchRepo {
	return &stubSearchRepo{byName: make(map[string]*entities.Supplement)}
}

func (r *stubSearchRepo) Lookup(_ context.Context, query string) (*entities.Supplement, error) {
	if s, ok := r.byName[query]; ok {
		return s, nil
	}
	return nil, apperrors.NewNotFoundError("no catalog entry")
}

func (r *stubSearchRepo) Index(_ context.Context, s *entities.Supplement) error {
	r.indexed = append(r.indexed, s.Name)
	return nil
}

func (r *stubSearchRepo) Delete(_ context.Context, _ string) error {
	return nil
}

type stubConnectivity struct {
	online bool
}

func (c *stubConnectivity) Online() bool { return c.online }

// writeNormalizerConfigs writes minimal alias and spelling tables and
// returns their paths.
func writeNormalizerConfigs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	aliases := []AliasEntry{
		{Canonical: "ashwagandha", Aliases: []string{"aswaganda", "withania somnifera"}},
		{Canonical: "vitamin d", Aliases: []string{"vit d", "vitamina d", "vitamin d3"}},
		{Canonical: "omega-3", Aliases: []string{"omega 3", "fish oil", "aceite de pescado"}},
		{Canonical: "magnesium", Aliases: []string{"magnesio"}},
	}
	aliasPath := filepath.Join(dir, "aliases.json")
	data, err := json.Marshal(aliases)
	if err != nil {
		t.Fatalf("marshal aliases: %v", err)
	}
	if err := os.WriteFile(aliasPath, data, 0o644); err != nil {
		t.Fatalf("write aliases: %v", err)
	}

	spelling := map[string]string{
		"ashwaganda": "ashwagandha",
		"magnesuim":  "magnesium",
	}
	spellingPath := filepath.Join(dir, "spelling.json")
	data, err = json.Marshal(spelling)
	if err != nil {
		t.Fatalf("marshal spelling: %v", err)
	}
	if err := os.WriteFile(spellingPath, data, 0o644); err != nil {
		t.Fatalf("write spelling: %v", err)
	}

	return aliasPath, spellingPath
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		RecommendationTTL: 7 * 24 * time.Hour,
		SharedLinkTTL:     24 * time.Hour,
	}
}

func testEnrichmentConfig() config.EnrichmentConfig {
	return config.EnrichmentConfig{
		SyncTimeout:     time.Second,
		PollInterval:    time.Millisecond,
		MaxPollDuration: 100 * time.Millisecond,
	}
}

func validRecommendation(id string) *entities.Recommendation {
	return &entities.Recommendation{
		ID:       id,
		Category: "ashwagandha",
		EvidenceSummary: entities.EvidenceSummary{
			TotalStudies: 42,
		},
		EnrichmentMetadata: &entities.EnrichmentMetadata{
			HasRealData: true,
			StudiesUsed: 25,
		},
	}
}
