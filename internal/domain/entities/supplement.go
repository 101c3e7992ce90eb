package entities

import "time"

// Supplement is a catalog entry in the search index. It links the many
// names a supplement is known by (English, Spanish, abbreviations) to
// the recommendation built for it.
type Supplement struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ScientificName string    `json:"scientificName,omitempty"`
	CommonNames    []string  `json:"commonNames,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	SearchCount    int       `json:"searchCount"`
	LastSearchedAt time.Time `json:"lastSearchedAt,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
