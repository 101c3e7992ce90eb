package entities

import "time"

// EvidenceGrade is the letter grade assigned to a condition or ingredient
// based on the strength of its supporting literature.
type EvidenceGrade string

const (
	GradeA EvidenceGrade = "A"
	GradeB EvidenceGrade = "B"
	GradeC EvidenceGrade = "C"
	GradeD EvidenceGrade = "D"
	GradeE EvidenceGrade = "E"
	GradeF EvidenceGrade = "F"
)

// IsValid checks if the grade is one of the defined letters.
func (g EvidenceGrade) IsValid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeE, GradeF:
		return true
	}
	return false
}

// Ingredient is a single studied compound inside a recommendation.
type Ingredient struct {
	Name       string        `json:"name"`
	Grade      EvidenceGrade `json:"grade"`
	StudyCount int           `json:"studyCount"`
	RCTCount   int           `json:"rctCount"`
}

// ConditionEvidence describes how well a supplement works for one condition.
type ConditionEvidence struct {
	Condition  string        `json:"condition"`
	Grade      EvidenceGrade `json:"grade"`
	StudyCount int           `json:"studyCount"`
	Notes      string        `json:"notes,omitempty"`
}

// EvidenceSummary aggregates the literature behind a recommendation.
type EvidenceSummary struct {
	TotalStudies       int          `json:"totalStudies"`
	TotalParticipants  int          `json:"totalParticipants"`
	EfficacyPercentage float64      `json:"efficacyPercentage"`
	ResearchSpanYears  int          `json:"researchSpanYears"`
	Ingredients        []Ingredient `json:"ingredients"`
}

// SupplementDetail is the descriptive payload rendered to the user.
type SupplementDetail struct {
	Description       string              `json:"description,omitempty"`
	WorksFor          []ConditionEvidence `json:"worksFor,omitempty"`
	DoesntWorkFor     []ConditionEvidence `json:"doesntWorkFor,omitempty"`
	LimitedEvidence   []ConditionEvidence `json:"limitedEvidence,omitempty"`
	Dosage            string              `json:"dosage,omitempty"`
	SideEffects       []string            `json:"sideEffects,omitempty"`
	Contraindications []string            `json:"contraindications,omitempty"`
	Interactions      []string            `json:"interactions,omitempty"`
}

// EnrichmentMetadata carries the provenance signals that distinguish
// literature-backed content from generic or fallback content.
type EnrichmentMetadata struct {
	HasRealData bool      `json:"hasRealData"`
	StudiesUsed int       `json:"studiesUsed"`
	Fallback    bool      `json:"fallback"`
	Source      string    `json:"source,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

// Recommendation is the unit of content returned to a user for a
// supplement query. It is created by the enrichment pipeline, read-only
// once displayed, and expires lazily via its cache entry's TTL.
type Recommendation struct {
	ID                 string              `json:"id"`
	Category           string              `json:"category"`
	EvidenceSummary    EvidenceSummary     `json:"evidenceSummary"`
	Supplement         SupplementDetail    `json:"supplement"`
	EnrichmentMetadata *EnrichmentMetadata `json:"enrichmentMetadata,omitempty"`
	CreatedAt          time.Time           `json:"createdAt,omitempty"`
}

// StudiesUsed returns the provenance study count, zero when no
// enrichment metadata is present.
func (r *Recommendation) StudiesUsed() int {
	if r.EnrichmentMetadata == nil {
		return 0
	}
	return r.EnrichmentMetadata.StudiesUsed
}

// UserProfile is the demographic context sent with enrichment requests.
type UserProfile struct {
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Location string `json:"location"`
}

// DefaultProfile returns the profile used when the caller supplies none.
func DefaultProfile() UserProfile {
	return UserProfile{
		Age:      35,
		Gender:   "male",
		Location: "CDMX",
	}
}

// WithDefaults fills any zero-valued field from the default profile.
func (p UserProfile) WithDefaults() UserProfile {
	def := DefaultProfile()
	if p.Age == 0 {
		p.Age = def.Age
	}
	if p.Gender == "" {
		p.Gender = def.Gender
	}
	if p.Location == "" {
		p.Location = def.Location
	}
	return p
}
