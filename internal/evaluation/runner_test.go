package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suplementia/supplement-discovery/internal/application/services"
)

type tableNormalizer struct {
	results map[string]*services.QueryNormalization
}

func (n *tableNormalizer) Normalize(query string) *services.QueryNormalization {
	if r, ok := n.results[query]; ok {
		return r
	}
	return &services.QueryNormalization{
		OriginalQuery:   query,
		NormalizedQuery: query,
		Confidence:      services.ConfidenceNeutral,
	}
}

func TestRunner_ScoresMatchesAndFailures(t *testing.T) {
	normalizer := &tableNormalizer{results: map[string]*services.QueryNormalization{
		"ashwaganda": {NormalizedQuery: "ashwagandha", Confidence: services.ConfidenceCorrected},
		"vit d":      {NormalizedQuery: "vitamin d", Confidence: services.ConfidenceExact},
		"omega":      {NormalizedQuery: "omega", Confidence: services.ConfidenceNeutral},
	}}

	queries := []GoldenQuery{
		{ID: "gq-1", Query: "ashwaganda", ExpectedCanonical: "ashwagandha", ExpectedTier: TierCorrected, Difficulty: "easy"},
		{ID: "gq-2", Query: "vit d", ExpectedCanonical: "vitamin d", ExpectedTier: TierExact, Difficulty: "easy"},
		{ID: "gq-3", Query: "omega", ExpectedCanonical: "omega-3", ExpectedTier: TierPrefix, Difficulty: "hard"},
	}

	summary := NewRunner(normalizer).Run(queries)

	assert.Equal(t, 3, summary.TotalQueries)
	assert.InDelta(t, 2.0/3.0, summary.CanonicalAccuracy, 0.001)
	assert.InDelta(t, 2.0/3.0, summary.TierAccuracy, 0.001)

	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "gq-3", summary.Failures[0].QueryID)

	easy := summary.ByDifficulty["easy"]
	require.NotNil(t, easy)
	assert.Equal(t, 2, easy.Count)
	assert.InDelta(t, 1.0, easy.CanonicalAccuracy, 0.001)
}

func TestRunner_EmptySet(t *testing.T) {
	summary := NewRunner(&tableNormalizer{}).Run(nil)
	assert.Zero(t, summary.TotalQueries)
	assert.Zero(t, summary.CanonicalAccuracy)
	assert.Empty(t, summary.Failures)
}

func TestTierOf(t *testing.T) {
	assert.Equal(t, TierExact, tierOf(services.ConfidenceExact))
	assert.Equal(t, TierCorrected, tierOf(services.ConfidenceCorrected))
	assert.Equal(t, TierPrefix, tierOf(services.ConfidencePrefix))
	assert.Equal(t, TierNeutral, tierOf(services.ConfidenceNeutral))
}
