package services

import (
	"github.com/suplementia/supplement-discovery/internal/domain/entities"
)

// RecommendationValidator applies the real-data heuristic that decides
// whether a recommendation is substantiated enough to show. It is not a
// schema validator: records with missing optional fields pass as long as
// their provenance holds up, and well-formed records are rejected when
// they claim study counts without any provenance to back them.
type RecommendationValidator struct{}

// NewRecommendationValidator creates a new validator
func NewRecommendationValidator() *RecommendationValidator {
	return &RecommendationValidator{}
}

// IsValid runs the validation sequence, short-circuiting on the first
// failure:
//  1. the record and its id/category must be present
//  2. a record that claims studies but carries no enrichment metadata at
//     all is the fabricated-data signature and is rejected
//  3. anything with at least one study behind it is accepted
func (v *RecommendationValidator) IsValid(rec *entities.Recommendation) bool {
	if rec == nil {
		return false
	}
	if rec.ID == "" || rec.Category == "" {
		return false
	}

	totalStudies := rec.EvidenceSummary.TotalStudies
	studiesUsed := rec.StudiesUsed()

	if totalStudies > 0 && studiesUsed == 0 && rec.EnrichmentMetadata == nil {
		return false
	}

	return totalStudies > 0 || studiesUsed > 0
}
