package services

import (
	"context"
	"encoding/json"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/suplementia/supplement-discovery/internal/domain/providers"
)

// Normalization confidence levels. An exact alias hit is certain; each
// step away from the table lowers certainty until unknown terms pass
// through at neutral.
const (
	ConfidenceExact     = 1.0
	ConfidenceCorrected = 0.9
	ConfidencePrefix    = 0.8
	ConfidenceNeutral   = 0.5
)

// QueryNormalization holds the result of normalizing a user search query.
type QueryNormalization struct {
	OriginalQuery   string   `json:"original_query"`
	NormalizedQuery string   `json:"normalized_query"`
	Confidence      float64  `json:"confidence"`
	Corrections     []string `json:"corrections,omitempty"`
}

// AliasEntry maps the many names a supplement is known by (Spanish
// names, abbreviations, brand-adjacent spellings) to one canonical term.
type AliasEntry struct {
	Canonical string   `json:"canonical"`
	Aliases   []string `json:"aliases"`
}

// QueryNormalizerService maps free-text supplement queries to canonical
// search terms. It is a pure lookup over static tables; the optional
// cache only avoids repeating the same lookup across requests.
type QueryNormalizerService struct {
	aliasTable   map[string]string // alias → canonical
	spellingDict map[string]string // misspelling → correct
	cache        providers.CacheProvider
	cacheTTL     time.Duration
}

var nonAlphaNumDash = regexp.MustCompile(`[^\p{L}\p{N}\s\-'/]`)

// NewQueryNormalizerService creates a new service from config files.
func NewQueryNormalizerService(aliasPath, spellingPath string) (*QueryNormalizerService, error) {
	svc := &QueryNormalizerService{
		aliasTable:   make(map[string]string),
		spellingDict: make(map[string]string),
	}

	if err := svc.loadAliases(aliasPath); err != nil {
		return nil, err
	}
	if err := svc.loadSpellingDict(spellingPath); err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *QueryNormalizerService) loadAliases(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var entries []AliasEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	for _, entry := range entries {
		canonical := strings.ToLower(strings.TrimSpace(entry.Canonical))
		s.aliasTable[canonical] = canonical
		for _, alias := range entry.Aliases {
			s.aliasTable[strings.ToLower(strings.TrimSpace(alias))] = canonical
		}
	}
	return nil
}

func (s *QueryNormalizerService) loadSpellingDict(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		s.spellingDict[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	return nil
}

// SetCache sets the cache provider for normalization results.
func (s *QueryNormalizerService) SetCache(cache providers.CacheProvider, ttl time.Duration) {
	s.cache = cache
	s.cacheTTL = ttl
}

// Normalize maps a raw query to its canonical term. Resolution order:
// exact alias hit, spell-corrected alias hit, unique prefix match, and
// finally neutral pass-through for unknown terms.
func (s *QueryNormalizerService) Normalize(rawQuery string) *QueryNormalization {
	cleaned := s.clean(rawQuery)
	result := &QueryNormalization{
		OriginalQuery:   rawQuery,
		NormalizedQuery: cleaned,
		Confidence:      ConfidenceNeutral,
	}
	if cleaned == "" {
		return result
	}

	if s.cache != nil {
		cacheKey := "query_norm:" + cleaned
		if data, err := s.cache.Get(context.Background(), cacheKey); err == nil {
			var cached QueryNormalization
			if json.Unmarshal(data, &cached) == nil {
				cached.OriginalQuery = rawQuery
				return &cached
			}
		}
	}

	if canonical, ok := s.aliasTable[cleaned]; ok {
		result.NormalizedQuery = canonical
		result.Confidence = ConfidenceExact
		return s.stash(result)
	}

	corrected, corrections := s.spellCorrect(cleaned)
	if len(corrections) > 0 {
		result.Corrections = corrections
		result.NormalizedQuery = corrected
		result.Confidence = ConfidenceCorrected
		if canonical, ok := s.aliasTable[corrected]; ok {
			result.NormalizedQuery = canonical
			return s.stash(result)
		}
	}

	if canonical, ok := s.prefixMatch(corrected); ok {
		result.NormalizedQuery = canonical
		result.Confidence = ConfidencePrefix
		return s.stash(result)
	}

	// Unknown term: pass through unchanged at neutral confidence.
	result.NormalizedQuery = corrected
	if len(corrections) == 0 {
		result.Confidence = ConfidenceNeutral
	}
	return s.stash(result)
}

func (s *QueryNormalizerService) clean(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	q = nonAlphaNumDash.ReplaceAllString(q, "")
	return strings.Join(strings.Fields(q), " ")
}

func (s *QueryNormalizerService) spellCorrect(query string) (string, []string) {
	words := strings.Fields(query)
	var corrections []string
	corrected := make([]string, len(words))

	for i, w := range words {
		if correction, ok := s.spellingDict[w]; ok {
			corrected[i] = correction
			corrections = append(corrections, w+" -> "+correction)
		} else {
			corrected[i] = w
		}
	}
	return strings.Join(corrected, " "), corrections
}

// prefixMatch resolves a query that is an unambiguous prefix of exactly
// one alias. Two candidate canonicals means the query is ambiguous and
// no match is returned.
func (s *QueryNormalizerService) prefixMatch(query string) (string, bool) {
	if len(query) < 3 {
		return "", false
	}

	found := ""
	for alias, canonical := range s.aliasTable {
		if strings.HasPrefix(alias, query) {
			if found != "" && found != canonical {
				return "", false
			}
			found = canonical
		}
	}
	return found, found != ""
}

func (s *QueryNormalizerService) stash(result *QueryNormalization) *QueryNormalization {
	if s.cache == nil {
		return result
	}
	cacheKey := "query_norm:" + s.clean(result.OriginalQuery)
	if data, err := json.Marshal(result); err == nil {
		_ = s.cache.Set(context.Background(), cacheKey, data, s.cacheTTL)
	}
	return result
}
