package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// QueryHash derives the lookup key for a normalized query: the first 16
// hex chars of sha256 over the lower-cased text. The truncation keeps
// keys short; collisions at this scale are not a concern.
func QueryHash(normalizedQuery string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(normalizedQuery))))
	return hex.EncodeToString(sum[:])[:16]
}
