package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suplementia/supplement-discovery/internal/api/middleware"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, apperrors.NewCacheMissError(key)
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

var _ providers.CacheProvider = (*mapCache)(nil)

func countingHandler(calls *int, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func TestCacheMiddleware_ServesRepeatedSearchFromCache(t *testing.T) {
	calls := 0
	handler := middleware.NewCacheMiddleware(newMapCache()).
		Middleware(countingHandler(&calls, http.StatusOK, `{"state":"displaying"}`))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest("GET", "/api/search?q=ashwagandha", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest("GET", "/api/search?q=ashwagandha", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, `{"state":"displaying"}`, second.Body.String())
	assert.Equal(t, 1, calls, "second request must not reach the handler")
}

func TestCacheMiddleware_QueryIsPartOfTheKey(t *testing.T) {
	calls := 0
	handler := middleware.NewCacheMiddleware(newMapCache()).
		Middleware(countingHandler(&calls, http.StatusOK, `{}`))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/search?q=ashwagandha", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/search?q=magnesium", nil))

	assert.Equal(t, 2, calls)
}

func TestCacheMiddleware_NonOKResponsesAreNotCached(t *testing.T) {
	calls := 0
	handler := middleware.NewCacheMiddleware(newMapCache()).
		Middleware(countingHandler(&calls, http.StatusAccepted, `{"state":"loading"}`))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/search?q=shilajit", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/search?q=shilajit", nil))

	assert.Equal(t, 2, calls, "a 202 job handle must be recomputed per request")
}

func TestCacheMiddleware_JobPollsAreNeverCached(t *testing.T) {
	calls := 0
	handler := middleware.NewCacheMiddleware(newMapCache()).
		Middleware(countingHandler(&calls, http.StatusOK, `{"status":"processing"}`))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/search/jobs/job-1", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/search/jobs/job-1", nil))

	assert.Equal(t, 2, calls)
}

func TestCacheMiddleware_UnknownRoutesPassThrough(t *testing.T) {
	cache := newMapCache()
	calls := 0
	handler := middleware.NewCacheMiddleware(cache).
		Middleware(countingHandler(&calls, http.StatusOK, "OK"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, 2, calls)
	assert.Empty(t, cache.data)
}
