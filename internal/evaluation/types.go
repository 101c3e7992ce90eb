package evaluation

// Tier labels the normalization path a golden query is expected to take.
type Tier string

const (
	TierExact     Tier = "exact"     // canonical name or known alias
	TierCorrected Tier = "corrected" // reached via spelling correction
	TierPrefix    Tier = "prefix"    // unambiguous partial input
	TierNeutral   Tier = "neutral"   // unknown term passed through
)

// ValidTiers returns all valid tier values.
func ValidTiers() []Tier {
	return []Tier{TierExact, TierCorrected, TierPrefix, TierNeutral}
}

// IsValid checks if the tier value is one of the defined constants.
func (t Tier) IsValid() bool {
	switch t {
	case TierExact, TierCorrected, TierPrefix, TierNeutral:
		return true
	}
	return false
}

// GoldenQuery represents a labeled test query with expected outcomes.
type GoldenQuery struct {
	ID                string `json:"id"`
	Query             string `json:"query"`
	ExpectedCanonical string `json:"expected_canonical"`
	ExpectedTier      Tier   `json:"expected_tier"`
	Difficulty        string `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID        string
	Query          string
	GotCanonical   string
	GotConfidence  float64
	CanonicalMatch bool
	TierMatch      bool
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries      int
	CanonicalAccuracy float64
	TierAccuracy      float64
	ByDifficulty      map[string]*DifficultySummary
	Failures          []EvalResult
}

// DifficultySummary holds metrics grouped by difficulty.
type DifficultySummary struct {
	Count             int
	CanonicalAccuracy float64
	TierAccuracy      float64
}
