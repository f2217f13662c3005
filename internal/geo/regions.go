package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"leadsboard/server/internal/dataset"
	"leadsboard/server/internal/models"
)

// stateCentroids maps each German federal state to an approximate
// centroid (lon, lat) used to place cluster markers on the map.
var stateCentroids = map[string]orb.Point{
	"Baden-Württemberg":      {9.0456, 48.6616},
	"Bayern":                 {11.4979, 48.7904},
	"Berlin":                 {13.4050, 52.5200},
	"Brandenburg":            {13.4054, 52.1314},
	"Bremen":                 {8.8017, 53.0793},
	"Hamburg":                {9.9937, 53.5511},
	"Hessen":                 {9.1624, 50.6521},
	"Mecklenburg-Vorpommern": {12.5296, 53.6127},
	"Niedersachsen":          {9.8451, 52.6367},
	"Nordrhein-Westfalen":    {7.6616, 51.4332},
	"Rheinland-Pfalz":        {7.3090, 49.9129},
	"Saarland":               {6.9516, 49.3964},
	"Sachsen":                {13.2017, 50.9295},
	"Sachsen-Anhalt":         {11.6923, 51.9503},
	"Schleswig-Holstein":     {9.6961, 54.2194},
	"Thüringen":              {11.0283, 50.9013},
}

// Centroid returns the map position of a state.
func Centroid(state string) (orb.Point, bool) {
	p, ok := stateCentroids[state]
	return p, ok
}

// LeadPoints builds a feature collection with one point per state carrying
// the lead count for that state. Leads in unknown or unspecified states
// are left off the map.
func LeadPoints(leads []models.Lead) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, group := range dataset.CountBy(leads, func(l models.Lead) string { return l.Bundesland }) {
		point, ok := stateCentroids[group.Key]
		if !ok {
			continue
		}
		feature := geojson.NewFeature(point)
		feature.Properties["state"] = group.Key
		feature.Properties["leads"] = group.Count
		fc.Append(feature)
	}
	return fc
}
