package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadsboard/server/internal/models"
)

func TestCentroid(t *testing.T) {
	p, ok := Centroid("Bayern")
	require.True(t, ok)
	assert.InDelta(t, 11.4979, p.Lon(), 0.001)
	assert.InDelta(t, 48.7904, p.Lat(), 0.001)

	_, ok = Centroid("Atlantis")
	assert.False(t, ok)
}

func TestLeadPoints(t *testing.T) {
	leads := []models.Lead{
		{Bundesland: "Bayern"},
		{Bundesland: "Bayern"},
		{Bundesland: "Berlin"},
		{Bundesland: "Not Specified"},
	}

	fc := LeadPoints(leads)
	require.Len(t, fc.Features, 2)

	counts := make(map[string]interface{})
	for _, f := range fc.Features {
		counts[f.Properties["state"].(string)] = f.Properties["leads"]
	}
	assert.Equal(t, 2, counts["Bayern"])
	assert.Equal(t, 1, counts["Berlin"])
}

func TestLeadPoints_Empty(t *testing.T) {
	fc := LeadPoints(nil)
	assert.Empty(t, fc.Features)
}
