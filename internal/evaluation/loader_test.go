package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGoldenFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "golden_queries.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGoldenQueries(t *testing.T) {
	path := writeGoldenFile(t, `[
		{"id": "gq-1", "query": "ashwaganda", "expected_canonical": "ashwagandha", "expected_tier": "corrected", "difficulty": "easy"},
		{"id": "gq-2", "query": "vit d", "expected_canonical": "vitamin d", "expected_tier": "exact", "difficulty": "medium"}
	]`)

	queries, err := LoadGoldenQueries(path)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "gq-1", queries[0].ID)
	assert.Equal(t, TierCorrected, queries[0].ExpectedTier)
	assert.NoError(t, ValidateGoldenQueries(queries))
}

func TestLoadGoldenQueries_MissingFile(t *testing.T) {
	_, err := LoadGoldenQueries(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestValidateGoldenQueries_Errors(t *testing.T) {
	tests := []struct {
		name    string
		queries []GoldenQuery
	}{
		{
			name:    "missing id",
			queries: []GoldenQuery{{Query: "x", ExpectedCanonical: "x", ExpectedTier: TierExact, Difficulty: "easy"}},
		},
		{
			name: "duplicate id",
			queries: []GoldenQuery{
				{ID: "a", Query: "x", ExpectedCanonical: "x", ExpectedTier: TierExact, Difficulty: "easy"},
				{ID: "a", Query: "y", ExpectedCanonical: "y", ExpectedTier: TierExact, Difficulty: "easy"},
			},
		},
		{
			name:    "invalid tier",
			queries: []GoldenQuery{{ID: "a", Query: "x", ExpectedCanonical: "x", ExpectedTier: "fuzzy", Difficulty: "easy"}},
		},
		{
			name:    "invalid difficulty",
			queries: []GoldenQuery{{ID: "a", Query: "x", ExpectedCanonical: "x", ExpectedTier: TierExact, Difficulty: "trivial"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateGoldenQueries(tt.queries))
		})
	}
}
