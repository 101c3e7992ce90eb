package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentToSupplement(t *testing.T) {
	doc := map[string]interface{}{
		"id":              "sup-1",
		"name":            "ashwagandha",
		"scientific_name": "Withania somnifera",
		"common_names":    []interface{}{"indian ginseng", "winter cherry"},
		"tags":            []interface{}{"adaptogen", "sleep"},
		"search_count":    float64(12),
		"created_at":      float64(1700000000),
	}

	s := documentToSupplement(doc)
	assert.Equal(t, "sup-1", s.ID)
	assert.Equal(t, "ashwagandha", s.Name)
	assert.Equal(t, "Withania somnifera", s.ScientificName)
	assert.Equal(t, []string{"indian ginseng", "winter cherry"}, s.CommonNames)
	assert.Equal(t, []string{"adaptogen", "sleep"}, s.Tags)
	assert.Equal(t, 12, s.SearchCount)
}

func TestDocumentToSupplement_MissingFields(t *testing.T) {
	s := documentToSupplement(map[string]interface{}{"name": "zinc"})
	assert.Equal(t, "zinc", s.Name)
	assert.Empty(t, s.ID)
	assert.Nil(t, s.CommonNames)
	assert.Zero(t, s.SearchCount)
}

func TestToStringSlice_SkipsNonStrings(t *testing.T) {
	out := toStringSlice([]interface{}{"a", 1, "b", nil})
	assert.Equal(t, []string{"a", "b"}, out)
}
