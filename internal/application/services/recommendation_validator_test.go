package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suplementia/supplement-discovery/internal/domain/entities"
)

func TestRecommendationValidator(t *testing.T) {
	validator := NewRecommendationValidator()

	tests := []struct {
		name string
		rec  *entities.Recommendation
		want bool
	}{
		{
			name: "nil record",
			rec:  nil,
			want: false,
		},
		{
			name: "missing id",
			rec: &entities.Recommendation{
				Category:        "ashwagandha",
				EvidenceSummary: entities.EvidenceSummary{TotalStudies: 10},
			},
			want: false,
		},
		{
			name: "missing category",
			rec: &entities.Recommendation{
				ID:              "rec-1",
				EvidenceSummary: entities.EvidenceSummary{TotalStudies: 10},
			},
			want: false,
		},
		{
			name: "fabricated data signature: claims studies, zero provenance",
			rec: &entities.Recommendation{
				ID:              "rec-1",
				Category:        "ashwagandha",
				EvidenceSummary: entities.EvidenceSummary{TotalStudies: 30},
			},
			want: false,
		},
		{
			name: "studies used alone is enough",
			rec: &entities.Recommendation{
				ID:                 "rec-1",
				Category:           "ashwagandha",
				EnrichmentMetadata: &entities.EnrichmentMetadata{StudiesUsed: 5},
			},
			want: true,
		},
		{
			name: "total studies with provenance present",
			rec: &entities.Recommendation{
				ID:                 "rec-1",
				Category:           "ashwagandha",
				EvidenceSummary:    entities.EvidenceSummary{TotalStudies: 30},
				EnrichmentMetadata: &entities.EnrichmentMetadata{HasRealData: true},
			},
			want: true,
		},
		{
			name: "no studies anywhere",
			rec: &entities.Recommendation{
				ID:                 "rec-1",
				Category:           "ashwagandha",
				EnrichmentMetadata: &entities.EnrichmentMetadata{Fallback: true},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validator.IsValid(tt.rec))
		})
	}
}
