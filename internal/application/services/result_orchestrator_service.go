package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// ResultState is the orchestrator's page-level state.
type ResultState string

const (
	StateLoading    ResultState = "loading"
	StateDisplaying ResultState = "displaying"
	StateNoData     ResultState = "no_data"
	StateError      ResultState = "error"
)

// ResultRequest carries the two ways a result page can be addressed: a
// recommendation id (shared link) or a free-text query (search).
type ResultRequest struct {
	RecommendationID string
	Query            string
	Profile          entities.UserProfile
}

// ResultView is what the orchestrator hands to the presentation layer.
// Offline is an overlay, not a state: it reflects connectivity at the
// moment the view was built and never replaces the underlying state.
// A Loading view carries the async job handle the client can poll.
type ResultView struct {
	State          ResultState              `json:"state"`
	Recommendation *entities.Recommendation `json:"recommendation,omitempty"`
	Job            *providers.AsyncJob      `json:"job,omitempty"`
	Message        string                   `json:"message,omitempty"`
	Suggestions    []string                 `json:"suggestions,omitempty"`
	Retryable      bool                     `json:"retryable,omitempty"`
	Offline        bool                     `json:"offline,omitempty"`

	// ErrorKind carries the taxonomy type behind an error state so the
	// transport layer can pick a status code. Not rendered.
	ErrorKind apperrors.ErrorType `json:"-"`
}

// ResultOrchestrator owns the state machine behind a result view:
// Loading, then exactly one of Displaying, NoData or Error. A shared
// link resolves from cache alone with no network fallback; re-enriching
// it is impossible anyway, since the original query text is not
// recoverable from the id. A free-text query runs the full pipeline;
// when enrichment defers to a job the view stays in Loading with a poll
// handle while the job finishes server-side.
type ResultOrchestrator struct {
	store           *RecommendationStore
	recommendations *RecommendationService
	connectivity    providers.ConnectivityObserver
	sharedLinkTTL   time.Duration
}

// NewResultOrchestrator creates a new orchestrator. sharedLinkTTL is the
// window a shared link stays live after it was last opened.
func NewResultOrchestrator(
	store *RecommendationStore,
	recommendations *RecommendationService,
	connectivity providers.ConnectivityObserver,
	sharedLinkTTL time.Duration,
) *ResultOrchestrator {
	return &ResultOrchestrator{
		store:           store,
		recommendations: recommendations,
		connectivity:    connectivity,
		sharedLinkTTL:   sharedLinkTTL,
	}
}

// Resolve runs one page load to its next stable state. Cancelling ctx
// aborts the synchronous pipeline; a background poll loop already
// started for a deferred job runs to its own ceiling regardless.
func (o *ResultOrchestrator) Resolve(ctx context.Context, req ResultRequest) *ResultView {
	var view *ResultView

	switch {
	case req.RecommendationID != "" && req.Query == "":
		view = o.resolveSharedLink(ctx, req.RecommendationID)
	case req.Query != "":
		view = o.resolveSearch(ctx, req)
	default:
		view = &ResultView{
			State:   StateError,
			Message: "no search query or recommendation id provided",
		}
	}

	if o.connectivity != nil {
		view.Offline = !o.connectivity.Online()
	}
	return view
}

// resolveSharedLink serves the id-addressed path from cache only. Every
// cache failure reads the same to the user; which sub-reason applied
// changes nothing about the remediation. A served link is re-stamped
// under the shared-link TTL, so it stays live for that window after the
// last open.
func (o *ResultOrchestrator) resolveSharedLink(ctx context.Context, id string) *ResultView {
	rec, err := o.store.GetRecommendation(ctx, id)
	if err != nil {
		log.Debug().Err(err).Str("id", id).Msg("shared link cache lookup failed")
		return &ResultView{
			State:   StateError,
			Message: "recommendation no longer available, search again",
		}
	}

	if o.sharedLinkTTL > 0 {
		if err := o.store.Set(ctx, id, rec, "", o.sharedLinkTTL); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("failed to refresh shared link entry")
		}
	}
	return &ResultView{State: StateDisplaying, Recommendation: rec}
}

func (o *ResultOrchestrator) resolveSearch(ctx context.Context, req ResultRequest) *ResultView {
	outcome, err := o.recommendations.Search(ctx, req.Query, req.Profile)
	if err != nil {
		return o.errorView(err)
	}

	if outcome.Recommendation != nil {
		return &ResultView{State: StateDisplaying, Recommendation: outcome.Recommendation}
	}

	// Async handle: hand the poll surface back to the client and finish
	// the job server-side, so the result is persisted whether or not the
	// client keeps polling.
	go o.completeAsync(outcome.Job, outcome.Normalization.NormalizedQuery)

	return &ResultView{
		State: StateLoading,
		Job: &providers.AsyncJob{
			JobID:         outcome.Job.JobID,
			PollURL:       "/api/search/jobs/" + outcome.Job.JobID,
			PollInterval:  outcome.Job.PollInterval,
			EstimatedTime: outcome.Job.EstimatedTime,
		},
	}
}

// completeAsync drives a deferred enrichment job to its terminal status
// and persists the result. AwaitJob bounds the loop with the poll
// ceiling, so a detached context cannot leak the goroutine.
func (o *ResultOrchestrator) completeAsync(job *providers.AsyncJob, normalizedQuery string) {
	rec, err := o.recommendations.AwaitJob(context.Background(), job, nil)
	if err != nil {
		log.Warn().Err(err).Str("job_id", job.JobID).Msg("async enrichment did not complete")
		return
	}

	if err := o.recommendations.Persist(context.Background(), normalizedQuery, rec); err != nil {
		log.Error().Err(err).Str("id", rec.ID).Msg("failed to persist polled recommendation")
	}
}

// errorView maps the typed error taxonomy onto terminal states. An
// insufficient-data outcome is expected, never retried, and lands in
// NoData with alternatives; faults land in Error with a retry
// affordance.
func (o *ResultOrchestrator) errorView(err error) *ResultView {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return &ResultView{
			State:     StateError,
			Message:   "something went wrong, please try again",
			Retryable: true,
		}
	}

	switch appErr.Type {
	case apperrors.ErrorTypeInsufficientData:
		return &ResultView{
			State:       StateNoData,
			Message:     appErr.Message,
			Suggestions: appErr.Suggestions,
		}
	case apperrors.ErrorTypeValidation:
		return &ResultView{
			State:       StateError,
			Message:     appErr.Message,
			Suggestions: appErr.Suggestions,
			ErrorKind:   appErr.Type,
		}
	case apperrors.ErrorTypeOffline:
		return &ResultView{
			State:     StateError,
			Message:   "no network connectivity",
			Offline:   true,
			ErrorKind: appErr.Type,
		}
	default:
		return &ResultView{
			State:     StateError,
			Message:   "something went wrong, please try again",
			Retryable: true,
			ErrorKind: appErr.Type,
		}
	}
}
