package routes

import (
	"net/http"

	"github.com/suplementia/supplement-discovery/internal/api/handlers"
	"github.com/suplementia/supplement-discovery/internal/api/middleware"
	"github.com/suplementia/supplement-discovery/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	recommendationHandler *handlers.RecommendationHandler
	metrics               *observability.Metrics
	responseCache         *middleware.CacheMiddleware
}

// NewRouter creates a new router. responseCache may be nil, which
// disables response caching.
func NewRouter(
	recommendationHandler *handlers.RecommendationHandler,
	metrics *observability.Metrics,
	responseCache *middleware.CacheMiddleware,
) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		recommendationHandler: recommendationHandler,
		metrics:               metrics,
		responseCache:         responseCache,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoints
	r.mux.HandleFunc("GET /api/search", r.recommendationHandler.Search)
	r.mux.HandleFunc("GET /api/search/jobs/{id}", r.recommendationHandler.GetJobStatus)

	// Shared-link endpoint (cache only)
	r.mux.HandleFunc("GET /api/recommendations/{id}", r.recommendationHandler.GetRecommendation)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	if r.responseCache != nil {
		handler = r.responseCache.Middleware(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set on every response
	handler = middleware.CORSMiddleware(handler)

	return handler
}
