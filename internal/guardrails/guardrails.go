// Package guardrails screens incoming queries before any normalization
// or enrichment work is spent on them. It blocks prescription drugs,
// recreational drugs and plainly off-topic requests, and accepts known
// supplement and health-goal vocabulary in English and Spanish.
package guardrails

import (
	"regexp"
	"strings"
)

// Severity classifies why a query was rejected.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityBlocked Severity = "blocked"
)

// Result is the outcome of screening one query.
type Result struct {
	Valid      bool
	Message    string
	Suggestion string
	Severity   Severity
}

const (
	maxQueryLength = 100

	blockedSuggestion = "Intenta buscar: ashwagandha, omega-3, vitamin-d, magnesium, sleep, cognitive, muscle-gain"
	unknownSuggestion = "Suplementos comunes: ashwagandha, omega-3, vitamin-d, magnesium, creatine, melatonin"
)

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(how to|como) (make|hacer|create|crear) (bomb|bomba|weapon|arma)`),
	regexp.MustCompile(`(?i)\b(recipe|receta) (for|para|de)\b`),
	regexp.MustCompile(`(?i)\b(buy|comprar|purchase|adquirir) (drug|droga|illegal)`),
	regexp.MustCompile(`(?i)\b(prescription|receta medica|rx)\b`),
}

var (
	ingredientShape  = regexp.MustCompile(`(?i)^[a-z]{4,}(-[a-z]{2,})?$`)
	ingredientSuffix = regexp.MustCompile(`(?i)acid|ine|ate|ol$`)
	ingredientWord   = regexp.MustCompile(`(?i)extract|extracto|powder|polvo`)
)

// Validate screens a raw user query. Screening order is fixed: length,
// blocklist, suspicious patterns, then the positive allowlist with an
// ingredient-shape fallback for terms not yet in the vocabulary.
func Validate(query string) Result {
	normalized := strings.ToLower(strings.TrimSpace(query))

	if len(normalized) < 2 {
		return Result{
			Message:  "La búsqueda es demasiado corta. Intenta con al menos 2 caracteres.",
			Severity: SeverityWarning,
		}
	}
	if len(normalized) > maxQueryLength {
		return Result{
			Message:  "La búsqueda es demasiado larga. Por favor, sé más específico.",
			Severity: SeverityWarning,
		}
	}

	words := strings.Fields(normalized)
	for _, word := range words {
		if _, blocked := blockedTerms[word]; blocked {
			return Result{
				Message:    "Esta búsqueda no está permitida. Por favor, busca suplementos alimenticios válidos.",
				Severity:   SeverityBlocked,
				Suggestion: blockedSuggestion,
			}
		}
	}

	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(normalized) {
			return Result{
				Message:    "Esta búsqueda no parece estar relacionada con suplementos alimenticios.",
				Severity:   SeverityBlocked,
				Suggestion: blockedSuggestion,
			}
		}
	}

	if !hasKnownTerm(words) && !looksLikeIngredient(normalized) {
		return Result{
			Message:    "No reconocemos este suplemento. ¿Estás buscando un suplemento alimenticio?",
			Severity:   SeverityWarning,
			Suggestion: unknownSuggestion,
		}
	}

	return Result{Valid: true}
}

// Sanitize trims, bounds and strips angle brackets from a query.
func Sanitize(query string) string {
	query = strings.TrimSpace(query)
	if len(query) > maxQueryLength {
		query = query[:maxQueryLength]
	}
	query = strings.ReplaceAll(query, "<", "")
	return strings.ReplaceAll(query, ">", "")
}

// SplitSuggestion breaks a comma-separated suggestion string into the
// individual terms. An empty input yields nil.
func SplitSuggestion(s string) []string {
	s = strings.TrimPrefix(s, "Intenta buscar:")
	s = strings.TrimPrefix(s, "Suplementos comunes:")
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func hasKnownTerm(words []string) bool {
	for _, word := range words {
		if _, ok := validSupplements[word]; ok {
			return true
		}
		if _, ok := validCategories[word]; ok {
			return true
		}

		// Partial matches cover minor typos. Hyphens are stripped on
		// both sides, and short words are excluded to avoid accidental
		// substring hits.
		cleanWord := strings.ReplaceAll(word, "-", "")
		if len(cleanWord) < 4 {
			continue
		}
		for term := range validSupplements {
			if partialMatch(cleanWord, term) {
				return true
			}
		}
		for term := range validCategories {
			if partialMatch(cleanWord, term) {
				return true
			}
		}
	}
	return false
}

func partialMatch(cleanWord, term string) bool {
	if len(term) < 4 {
		return false
	}
	cleanTerm := strings.ReplaceAll(term, "-", "")
	return strings.Contains(cleanTerm, cleanWord) || strings.Contains(cleanWord, cleanTerm)
}

func looksLikeIngredient(normalized string) bool {
	return ingredientShape.MatchString(normalized) ||
		ingredientSuffix.MatchString(normalized) ||
		ingredientWord.MatchString(normalized)
}
