package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/suplementia/supplement-discovery/internal/application/services"
	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// RecommendationHandler handles search and recommendation HTTP requests
type RecommendationHandler struct {
	orchestrator *services.ResultOrchestrator
	enricher     providers.EnrichmentProvider
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(
	orchestrator *services.ResultOrchestrator,
	enricher providers.EnrichmentProvider,
) *RecommendationHandler {
	return &RecommendationHandler{
		orchestrator: orchestrator,
		enricher:     enricher,
	}
}

// Search handles GET /api/search
//
// The response body is always a result view; the page-level state inside
// it is what the client renders. A synchronous enrichment resolves
// within the request (200); when the collaborator defers to a job the
// response is 202 with a poll handle, and the job completes and
// persists server-side.
func (h *RecommendationHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	view := h.orchestrator.Resolve(r.Context(), services.ResultRequest{
		Query:   query,
		Profile: profileFromQuery(r),
	})

	respondWithJSON(w, searchStatus(view), view)
}

// GetRecommendation handles GET /api/recommendations/:id
//
// This is the shared-link path: cache only, no enrichment fallback.
func (h *RecommendationHandler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "recommendation ID is required")
		return
	}

	view := h.orchestrator.Resolve(r.Context(), services.ResultRequest{RecommendationID: id})

	status := http.StatusOK
	if view.State == services.StateError {
		status = http.StatusNotFound
	}
	respondWithJSON(w, status, view)
}

// GetJobStatus handles GET /api/search/jobs/:id
//
// The poll surface behind a 202 search response: progress while the job
// runs, the recommendation once it completes.
func (h *RecommendationHandler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		respondWithError(w, http.StatusBadRequest, "job ID is required")
		return
	}

	result, err := h.enricher.PollJob(r.Context(), &providers.AsyncJob{JobID: jobID})
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			switch appErr.Type {
			case apperrors.ErrorTypeNotFound:
				respondWithError(w, http.StatusNotFound, appErr.Message)
			case apperrors.ErrorTypeTimeout:
				respondWithError(w, http.StatusGatewayTimeout, appErr.Message)
			default:
				respondWithError(w, http.StatusBadGateway, "enrichment service unavailable")
			}
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":         jobID,
		"status":         result.Status,
		"progress":       result.Progress,
		"recommendation": result.Recommendation,
	})
}

// searchStatus maps a result view to an HTTP status. Displaying and
// no_data are both successful page loads, a loading view is an accepted
// job, and error views pick their status from the error taxonomy.
func searchStatus(view *services.ResultView) int {
	switch {
	case view.State == services.StateLoading:
		return http.StatusAccepted
	case view.State != services.StateError:
		return http.StatusOK
	case view.Offline:
		return http.StatusServiceUnavailable
	case view.ErrorKind == apperrors.ErrorTypeValidation:
		// Rejected by the query guardrails.
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func profileFromQuery(r *http.Request) entities.UserProfile {
	profile := entities.UserProfile{
		Gender:   r.URL.Query().Get("gender"),
		Location: r.URL.Query().Get("location"),
	}
	if raw := r.URL.Query().Get("age"); raw != "" {
		if age, err := strconv.Atoi(raw); err == nil {
			profile.Age = age
		}
	}
	return profile.WithDefaults()
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
