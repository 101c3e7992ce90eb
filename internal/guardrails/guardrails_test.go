package guardrails

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_KnownSupplements(t *testing.T) {
	queries := []string{
		"ashwagandha",
		"omega-3",
		"vitamin-d",
		"magnesio",
		"melatonina",
		"creatine",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			result := Validate(q)
			assert.True(t, result.Valid, "expected %q to be accepted", q)
		})
	}
}

func TestValidate_HealthGoals(t *testing.T) {
	for _, q := range []string{"sleep", "dormir", "muscle-gain", "ansiedad", "memoria"} {
		result := Validate(q)
		assert.True(t, result.Valid, "expected %q to be accepted", q)
	}
}

func TestValidate_BlockedTerms(t *testing.T) {
	for _, q := range []string{"pizza", "ibuprofen", "cocaina", "steroid", "xanax"} {
		t.Run(q, func(t *testing.T) {
			result := Validate(q)
			assert.False(t, result.Valid)
			assert.Equal(t, SeverityBlocked, result.Severity)
			assert.NotEmpty(t, result.Suggestion)
		})
	}
}

func TestValidate_SuspiciousPatterns(t *testing.T) {
	queries := []string{
		"recipe for protein shake",
		"receta de ensalada",
		"buy illegal supplements",
		"prescription sleeping pills",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			result := Validate(q)
			assert.False(t, result.Valid)
			assert.Equal(t, SeverityBlocked, result.Severity)
		})
	}
}

func TestValidate_Length(t *testing.T) {
	result := Validate("a")
	assert.False(t, result.Valid)
	assert.Equal(t, SeverityWarning, result.Severity)

	result = Validate(strings.Repeat("x", 101))
	assert.False(t, result.Valid)
	assert.Equal(t, SeverityWarning, result.Severity)
}

func TestValidate_UnknownButIngredientShaped(t *testing.T) {
	// Not in the vocabulary yet, but shaped like a compound name. These
	// go to the discovery queue instead of being rejected.
	for _, q := range []string{"berberine", "fadogia", "shilajit"} {
		result := Validate(q)
		assert.True(t, result.Valid, "expected %q to pass the heuristic", q)
	}
}

func TestValidate_UnknownGibberish(t *testing.T) {
	result := Validate("xq9 zz1")
	assert.False(t, result.Valid)
	assert.Equal(t, SeverityWarning, result.Severity)
	assert.NotEmpty(t, result.Suggestion)
}

func TestValidate_PartialMatchTypos(t *testing.T) {
	// "ashwagand" is a prefix of ashwagandha and long enough for the
	// partial match to fire.
	result := Validate("ashwagand")
	assert.True(t, result.Valid)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "ashwagandha", Sanitize("  ashwagandha  "))
	assert.Equal(t, "scriptalert/script", Sanitize("<script>alert</script>"))
	assert.Len(t, Sanitize(strings.Repeat("a", 200)), maxQueryLength)
}
