package enrichment

import "encoding/json"

// The collaborator's payload has drifted across deployments: field names
// renamed, list items flattened to strings, metadata relocated. Every
// observed variant is modeled here and converted to the canonical
// Recommendation by the adapter; none of this leaks past this package.

// enrichRequest is the JSON body sent to the enrichment endpoint.
type enrichRequest struct {
	SupplementName string `json:"supplementName"`
	Category       string `json:"category"`
	BenefitQuery   string `json:"benefitQuery,omitempty"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	Location       string `json:"location"`
	JobID          string `json:"jobId"`
}

// syncResponse is the HTTP 200 body.
type syncResponse struct {
	Success        bool            `json:"success"`
	Recommendation *rawPayload     `json:"recommendation"`
	Supplement     *rawPayload     `json:"supplement"` // older deployments
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

// acceptedResponse is the HTTP 202 body.
type acceptedResponse struct {
	Success          bool   `json:"success"`
	Status           string `json:"status"`
	RecommendationID string `json:"recommendation_id"`
	PollURL          string `json:"pollUrl"`
	PollInterval     int    `json:"pollInterval"`
	EstimatedTime    int    `json:"estimatedTime"`
}

// errorResponse is any non-2xx body.
type errorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// pollResponse is the poll endpoint body.
type pollResponse struct {
	Status         string      `json:"status"`
	Recommendation *rawPayload `json:"recommendation,omitempty"`
	Error          string      `json:"error,omitempty"`
	Progress       float64     `json:"progress,omitempty"`
}

// rawPayload is the union of every recommendation shape the collaborator
// has been observed to return.
type rawPayload struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"` // some variants use name instead of category

	// description appeared as whatIsIt in earlier versions
	Description string `json:"description"`
	WhatIsIt    string `json:"whatIsIt"`

	EvidenceSummary *rawEvidenceSummary `json:"evidenceSummary"`

	// condition lists: items are either bare strings or structured objects
	WorksFor        []rawCondition `json:"worksFor"`
	DoesntWorkFor   []rawCondition `json:"doesntWorkFor"`
	LimitedEvidence []rawCondition `json:"limitedEvidence"`

	Dosage            string   `json:"dosage"`
	SideEffects       []string `json:"sideEffects"`
	Contraindications []string `json:"contraindications"`
	Interactions      []string `json:"interactions"`

	// provenance: top-level in current deployments, nested under
	// metadata.enrichment in older ones
	EnrichmentMetadata *rawMetadata `json:"enrichmentMetadata"`
	Metadata           *struct {
		Enrichment *rawMetadata `json:"enrichment"`
	} `json:"metadata"`
}

type rawEvidenceSummary struct {
	TotalStudies       int             `json:"totalStudies"`
	TotalParticipants  int             `json:"totalParticipants"`
	EfficacyPercentage float64         `json:"efficacyPercentage"`
	ResearchSpanYears  int             `json:"researchSpanYears"`
	Ingredients        []rawIngredient `json:"ingredients"`
}

type rawIngredient struct {
	Name       string `json:"name"`
	Grade      string `json:"grade"`
	StudyCount int    `json:"studyCount"`
	RCTCount   int    `json:"rctCount"`
}

type rawMetadata struct {
	HasRealData bool   `json:"hasRealData"`
	StudiesUsed int    `json:"studiesUsed"`
	Fallback    bool   `json:"fallback"`
	Source      string `json:"source"`
	Timestamp   string `json:"timestamp"`
}

// rawCondition accepts both a JSON string ("anxiety") and a structured
// object ({"condition":"anxiety","grade":"B",...}).
type rawCondition struct {
	Condition  string
	Grade      string
	StudyCount int
	Notes      string
}

func (c *rawCondition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Condition = s
		return nil
	}

	var obj struct {
		Condition  string `json:"condition"`
		Grade      string `json:"grade"`
		StudyCount int    `json:"studyCount"`
		Notes      string `json:"notes"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	c.Condition = obj.Condition
	c.Grade = obj.Grade
	c.StudyCount = obj.StudyCount
	c.Notes = obj.Notes
	return nil
}
