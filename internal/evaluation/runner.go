package evaluation

import (
	"strings"

	"github.com/suplementia/supplement-discovery/internal/application/services"
)

// Normalizer is the piece under evaluation.
type Normalizer interface {
	Normalize(query string) *services.QueryNormalization
}

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	normalizer Normalizer
}

func NewRunner(n Normalizer) *Runner {
	return &Runner{normalizer: n}
}

// Run normalizes every golden query and scores the outcome against the
// labels. Failures are kept verbatim in the summary so a regression can
// be read straight out of the report.
func (r *Runner) Run(queries []GoldenQuery) *EvalSummary {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByDifficulty: make(map[string]*DifficultySummary),
	}

	for _, gq := range queries {
		norm := r.normalizer.Normalize(gq.Query)

		result := EvalResult{
			QueryID:        gq.ID,
			Query:          gq.Query,
			GotCanonical:   norm.NormalizedQuery,
			GotConfidence:  norm.Confidence,
			CanonicalMatch: strings.EqualFold(norm.NormalizedQuery, gq.ExpectedCanonical),
			TierMatch:      tierOf(norm.Confidence) == gq.ExpectedTier,
		}

		r.updateSummary(summary, gq, result)
	}

	r.finalizeSummary(summary)
	return summary
}

// tierOf maps a confidence value back to its tier label.
func tierOf(confidence float64) Tier {
	switch {
	case confidence >= services.ConfidenceExact:
		return TierExact
	case confidence >= services.ConfidenceCorrected:
		return TierCorrected
	case confidence >= services.ConfidencePrefix:
		return TierPrefix
	default:
		return TierNeutral
	}
}

func (r *Runner) updateSummary(s *EvalSummary, gq GoldenQuery, res EvalResult) {
	if res.CanonicalMatch {
		s.CanonicalAccuracy++
	}
	if res.TierMatch {
		s.TierAccuracy++
	}
	if !res.CanonicalMatch || !res.TierMatch {
		s.Failures = append(s.Failures, res)
	}

	if _, ok := s.ByDifficulty[gq.Difficulty]; !ok {
		s.ByDifficulty[gq.Difficulty] = &DifficultySummary{}
	}
	ds := s.ByDifficulty[gq.Difficulty]
	ds.Count++
	if res.CanonicalMatch {
		ds.CanonicalAccuracy++
	}
	if res.TierMatch {
		ds.TierAccuracy++
	}
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		n := float64(s.TotalQueries)
		s.CanonicalAccuracy /= n
		s.TierAccuracy /= n
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			n := float64(ds.Count)
			ds.CanonicalAccuracy /= n
			ds.TierAccuracy /= n
		}
	}
}
