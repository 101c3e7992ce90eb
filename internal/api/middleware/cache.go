package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suplementia/supplement-discovery/internal/domain/providers"
)

// routeTTL configures response caching for one route prefix.
type routeTTL struct {
	TTL     time.Duration
	Enabled bool
}

// CacheMiddleware serves repeated GET requests straight from the cache
// tier instead of re-running the pipeline. Only 200 responses are
// stored, so job handles (202) and error views are always recomputed.
type CacheMiddleware struct {
	cache  providers.CacheProvider
	routes map[string]routeTTL
}

// NewCacheMiddleware creates a response cache over the given provider.
func NewCacheMiddleware(cache providers.CacheProvider) *CacheMiddleware {
	return &CacheMiddleware{
		cache: cache,
		routes: map[string]routeTTL{
			"/api/search":           {TTL: 5 * time.Minute, Enabled: true},
			"/api/search/jobs/":     {Enabled: false}, // poll responses change between requests
			"/api/recommendations/": {TTL: 10 * time.Minute, Enabled: true},
		},
	}
}

// Middleware returns the response cache handler.
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		route := m.routeConfig(r.URL.Path)
		if !route.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		key := cacheKey(r)
		if cached, err := m.cache.Get(r.Context(), key); err == nil {
			log.Debug().Str("path", r.URL.Path).Msg("response cache hit")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		w.Header().Set("X-Cache", "MISS")
		recorder := &cacheRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(r.Context(), key, recorder.body.Bytes(), route.TTL); err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to cache response")
			}
		}
	})
}

// routeConfig picks the longest matching route prefix, so the disabled
// jobs route wins over its /api/search parent.
func (m *CacheMiddleware) routeConfig(path string) routeTTL {
	if cfg, ok := m.routes[path]; ok {
		return cfg
	}

	var best string
	var found routeTTL
	for pattern, cfg := range m.routes {
		if strings.HasPrefix(path, pattern) && len(pattern) > len(best) {
			best = pattern
			found = cfg
		}
	}
	if best == "" {
		return routeTTL{Enabled: false}
	}
	return found
}

// cacheKey hashes method, path and query into a bounded key.
func cacheKey(r *http.Request) string {
	key := r.Method + ":" + r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	sum := sha256.Sum256([]byte(key))
	return "http_cache_" + hex.EncodeToString(sum[:])
}

// cacheRecorder tees the response body so a 200 can be stored after it
// has been written to the client.
type cacheRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

func (r *cacheRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

func (r *cacheRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
