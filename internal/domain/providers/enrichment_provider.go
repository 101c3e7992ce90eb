package providers

import (
	"context"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
)

// EnrichmentRequest is the input to the enrichment collaborator.
type EnrichmentRequest struct {
	SupplementName string
	BenefitQuery   string
	Profile        entities.UserProfile
	JobID          string
}

// AsyncJob is the handle returned when the collaborator accepts a
// request for asynchronous processing. The caller polls until the job
// reaches a terminal status or the poll ceiling elapses.
type AsyncJob struct {
	JobID         string `json:"jobId"`
	PollURL       string `json:"pollUrl,omitempty"`
	PollInterval  int    `json:"pollInterval,omitempty"`  // seconds
	EstimatedTime int    `json:"estimatedTime,omitempty"` // seconds
}

// EnrichmentResult is the outcome of one enrichment attempt: exactly one
// of Recommendation or Job is set.
type EnrichmentResult struct {
	Recommendation *entities.Recommendation
	Job            *AsyncJob
}

// PollResult is the outcome of one poll tick.
type PollResult struct {
	Status         entities.JobStatus
	Progress       float64
	Recommendation *entities.Recommendation
	Error          string
}

// EnrichmentProvider defines the enrichment collaborator boundary. All
// transport and parse failures are converted to typed application
// errors before crossing it.
type EnrichmentProvider interface {
	// Enrich submits a request. A nil error means either a complete
	// recommendation (synchronous) or an async job handle.
	Enrich(ctx context.Context, req EnrichmentRequest) (*EnrichmentResult, error)

	// PollJob fetches the current status of an async job.
	PollJob(ctx context.Context, job *AsyncJob) (*PollResult, error)
}
