package enrichment

import (
	"time"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
)

// adaptPayload converts any observed payload variant into the canonical
// Recommendation. Field guessing stops here: callers only ever see the
// canonical shape.
func adaptPayload(raw *rawPayload, fallbackID string) *entities.Recommendation {
	if raw == nil {
		return nil
	}

	rec := &entities.Recommendation{
		ID:       raw.ID,
		Category: raw.Category,
	}
	if rec.ID == "" {
		rec.ID = fallbackID
	}
	if rec.Category == "" {
		rec.Category = raw.Name
	}

	description := raw.Description
	if description == "" {
		description = raw.WhatIsIt
	}

	worksFor := adaptConditions(raw.WorksFor)

	// Older payloads omit ingredient grades; the first worksFor grade is
	// the documented fallback.
	defaultGrade := entities.GradeC
	if len(worksFor) > 0 && worksFor[0].Grade.IsValid() {
		defaultGrade = worksFor[0].Grade
	}

	if raw.EvidenceSummary != nil {
		rec.EvidenceSummary = entities.EvidenceSummary{
			TotalStudies:       raw.EvidenceSummary.TotalStudies,
			TotalParticipants:  raw.EvidenceSummary.TotalParticipants,
			EfficacyPercentage: clampPercentage(raw.EvidenceSummary.EfficacyPercentage),
			ResearchSpanYears:  raw.EvidenceSummary.ResearchSpanYears,
			Ingredients:        adaptIngredients(raw.EvidenceSummary.Ingredients, defaultGrade),
		}
	}

	rec.Supplement = entities.SupplementDetail{
		Description:       description,
		WorksFor:          worksFor,
		DoesntWorkFor:     adaptConditions(raw.DoesntWorkFor),
		LimitedEvidence:   adaptConditions(raw.LimitedEvidence),
		Dosage:            raw.Dosage,
		SideEffects:       raw.SideEffects,
		Contraindications: raw.Contraindications,
		Interactions:      raw.Interactions,
	}

	rec.EnrichmentMetadata = adaptMetadata(raw)
	return rec
}

func adaptMetadata(raw *rawPayload) *entities.EnrichmentMetadata {
	var m *rawMetadata
	switch {
	case raw.EnrichmentMetadata != nil:
		m = raw.EnrichmentMetadata
	case raw.Metadata != nil && raw.Metadata.Enrichment != nil:
		m = raw.Metadata.Enrichment
	default:
		return nil
	}

	meta := &entities.EnrichmentMetadata{
		HasRealData: m.HasRealData,
		StudiesUsed: m.StudiesUsed,
		Fallback:    m.Fallback,
		Source:      m.Source,
	}
	if m.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, m.Timestamp); err == nil {
			meta.Timestamp = ts
		}
	}
	return meta
}

func adaptConditions(raw []rawCondition) []entities.ConditionEvidence {
	if len(raw) == 0 {
		return nil
	}
	out := make([]entities.ConditionEvidence, 0, len(raw))
	for _, c := range raw {
		if c.Condition == "" {
			continue
		}
		grade := entities.EvidenceGrade(c.Grade)
		if !grade.IsValid() {
			grade = entities.GradeC
		}
		out = append(out, entities.ConditionEvidence{
			Condition:  c.Condition,
			Grade:      grade,
			StudyCount: c.StudyCount,
			Notes:      c.Notes,
		})
	}
	return out
}

func adaptIngredients(raw []rawIngredient, defaultGrade entities.EvidenceGrade) []entities.Ingredient {
	if len(raw) == 0 {
		return nil
	}
	out := make([]entities.Ingredient, 0, len(raw))
	for _, ing := range raw {
		if ing.Name == "" {
			continue
		}
		grade := entities.EvidenceGrade(ing.Grade)
		if !grade.IsValid() {
			grade = defaultGrade
		}
		out = append(out, entities.Ingredient{
			Name:       ing.Name,
			Grade:      grade,
			StudyCount: ing.StudyCount,
			RCTCount:   ing.RCTCount,
		})
	}
	return out
}

func clampPercentage(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
