package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/suplementia/supplement-discovery/internal/domain/entities"
	"github.com/suplementia/supplement-discovery/internal/domain/providers"
	"github.com/suplementia/supplement-discovery/pkg/config"
	apperrors "github.com/suplementia/supplement-discovery/pkg/errors"
)

// defaultSuggestions are offered when a query has no scientific backing.
var defaultSuggestions = []string{
	"ashwagandha", "omega-3", "vitamin d", "magnesium", "creatine", "melatonin",
}

// RecommendationChecker decides whether an adapted payload carries real
// provenance. Injected so the transport layer stays independent of the
// application layer.
type RecommendationChecker interface {
	IsValid(rec *entities.Recommendation) bool
}

// Client calls the enrichment collaborator. The initial attempt is
// synchronous and bounded; on timeout the request is re-submitted for
// asynchronous processing instead of failing outright. A circuit breaker
// sheds load when the collaborator is down.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	checker     RecommendationChecker
	syncTimeout time.Duration
}

var _ providers.EnrichmentProvider = (*Client)(nil)

// NewClient creates a new enrichment client.
func NewClient(cfg *config.EnrichmentConfig, checker RecommendationChecker) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "enrichment",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Insufficient data is an answer about the query, not a fault of
		// the collaborator; it must never trip the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || apperrors.IsType(err, apperrors.ErrorTypeInsufficientData)
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			// Outer bound; per-attempt deadlines come from contexts.
			Timeout: cfg.MaxPollDuration + cfg.SyncTimeout,
		},
		breaker:     breaker,
		checker:     checker,
		syncTimeout: cfg.SyncTimeout,
	}
}

// Enrich submits an enrichment request.
func (c *Client) Enrich(ctx context.Context, req providers.EnrichmentRequest) (*providers.EnrichmentResult, error) {
	profile := req.Profile.WithDefaults()
	body := enrichRequest{
		SupplementName: req.SupplementName,
		Category:       req.SupplementName,
		BenefitQuery:   req.BenefitQuery,
		Age:            profile.Age,
		Gender:         profile.Gender,
		Location:       profile.Location,
		JobID:          req.JobID,
	}

	syncCtx, cancel := context.WithTimeout(ctx, c.syncTimeout)
	defer cancel()

	result, err := c.submit(syncCtx, body, false)
	if err == nil {
		return result, nil
	}

	// Sync attempt timed out while the parent is still live: hand the
	// work to the collaborator's queue instead of failing.
	if apperrors.IsType(err, apperrors.ErrorTypeTimeout) && ctx.Err() == nil {
		return c.submit(ctx, body, true)
	}
	return nil, err
}

func (c *Client) submit(ctx context.Context, body enrichRequest, preferAsync bool) (*providers.EnrichmentResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.NewEnrichmentError("failed to encode enrichment request", err)
	}

	endpoint := c.baseURL + "/api/enrich"
	if preferAsync {
		endpoint += "?mode=async"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewEnrichmentError("failed to build enrichment request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return c.decodeSubmitResponse(resp, body.JobID)
	})
	if err != nil {
		return nil, classifyTransportError(err)
	}
	return res.(*providers.EnrichmentResult), nil
}

func (c *Client) decodeSubmitResponse(resp *http.Response, jobID string) (*providers.EnrichmentResult, error) {
	switch {
	case resp.StatusCode == http.StatusAccepted:
		var accepted acceptedResponse
		if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
			return nil, apperrors.NewEnrichmentError("malformed accepted response", err)
		}
		if accepted.RecommendationID == "" {
			return nil, apperrors.NewEnrichmentError("accepted response missing job id", nil)
		}
		interval := accepted.PollInterval
		if interval <= 0 {
			interval = 2
		}
		return &providers.EnrichmentResult{
			Job: &providers.AsyncJob{
				JobID:         accepted.RecommendationID,
				PollURL:       accepted.PollURL,
				PollInterval:  interval,
				EstimatedTime: accepted.EstimatedTime,
			},
		}, nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var sync syncResponse
		if err := json.NewDecoder(resp.Body).Decode(&sync); err != nil {
			return nil, apperrors.NewEnrichmentError("malformed enrichment response", err)
		}
		raw := sync.Recommendation
		if raw == nil {
			raw = sync.Supplement
		}
		if raw == nil {
			return nil, apperrors.NewEnrichmentError("enrichment response carried no recommendation", nil)
		}
		rec := adaptPayload(raw, jobID)
		if c.checker != nil && !c.checker.IsValid(rec) {
			return nil, apperrors.NewInsufficientDataError(
				fmt.Sprintf("no substantiated scientific data for %q", rec.Category),
				defaultSuggestions,
			)
		}
		return &providers.EnrichmentResult{Recommendation: rec}, nil

	default:
		return nil, c.decodeErrorResponse(resp)
	}
}

func (c *Client) decodeErrorResponse(resp *http.Response) error {
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error == "insufficient_data" || resp.StatusCode == http.StatusNotFound {
			suggestions := defaultSuggestions
			if body.Suggestion != "" {
				suggestions = splitSuggestions(body.Suggestion)
			}
			msg := body.Message
			if msg == "" {
				msg = "no scientific literature found"
			}
			return apperrors.NewInsufficientDataError(msg, suggestions)
		}
	}
	return apperrors.NewEnrichmentError(
		fmt.Sprintf("enrichment service returned status %d", resp.StatusCode), nil,
	)
}

// PollJob fetches the current status of an async enrichment job.
func (c *Client) PollJob(ctx context.Context, job *providers.AsyncJob) (*providers.PollResult, error) {
	endpoint, err := c.resolvePollURL(job)
	if err != nil {
		return nil, apperrors.NewEnrichmentError("invalid poll url", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewEnrichmentError("failed to build poll request", err)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, apperrors.NewEnrichmentError(
				fmt.Sprintf("poll endpoint returned status %d", resp.StatusCode), nil)
		}

		var poll pollResponse
		if err := json.NewDecoder(resp.Body).Decode(&poll); err != nil {
			return nil, apperrors.NewEnrichmentError("malformed poll response", err)
		}

		result := &providers.PollResult{
			Status:   entities.JobStatus(poll.Status),
			Progress: poll.Progress,
			Error:    poll.Error,
		}
		if poll.Recommendation != nil {
			result.Recommendation = adaptPayload(poll.Recommendation, job.JobID)
		}
		return result, nil
	})
	if err != nil {
		return nil, classifyTransportError(err)
	}
	return res.(*providers.PollResult), nil
}

func (c *Client) resolvePollURL(job *providers.AsyncJob) (string, error) {
	if job.PollURL == "" {
		return fmt.Sprintf("%s/api/enrich/jobs/%s", c.baseURL, url.PathEscape(job.JobID)), nil
	}
	parsed, err := url.Parse(job.PollURL)
	if err != nil {
		return "", err
	}
	if parsed.IsAbs() {
		return job.PollURL, nil
	}
	return c.baseURL + "/" + strings.TrimLeft(job.PollURL, "/"), nil
}

// classifyTransportError maps low-level failures onto the error
// taxonomy. Typed errors pass through untouched.
func classifyTransportError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.NewEnrichmentError("enrichment service unavailable", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("enrichment request timed out")
	}
	return apperrors.NewEnrichmentError("enrichment request failed", err)
}

func splitSuggestions(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultSuggestions
	}
	return out
}
