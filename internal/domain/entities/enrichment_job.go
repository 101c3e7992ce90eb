package entities

import "time"

// JobStatus is the lifecycle state of an enrichment job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether the job can no longer change state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// EnrichmentJob tracks one asynchronous enrichment request from
// acceptance through completion or failure.
type EnrichmentJob struct {
	ID             string          `json:"id"`
	Query          string          `json:"query"`
	Status         JobStatus       `json:"status"`
	Progress       float64         `json:"progress,omitempty"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// DiscoveryItem is a queued request to research an unknown supplement.
// Search count doubles as priority: the more users ask, the sooner the
// worker picks it up.
type DiscoveryItem struct {
	ID              string    `json:"id"`
	Query           string    `json:"query"`
	NormalizedQuery string    `json:"normalizedQuery"`
	SearchCount     int       `json:"searchCount"`
	Status          JobStatus `json:"status"`
	LastError       string    `json:"lastError,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
