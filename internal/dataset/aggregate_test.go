package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadsboard/server/internal/models"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestSumAndMean(t *testing.T) {
	leads := []models.Lead{
		{Wohneinheiten: 2},
		{Wohneinheiten: 4},
		{Wohneinheiten: 6},
	}
	units := func(l models.Lead) float64 { return l.Wohneinheiten }

	assert.Equal(t, 3, Count(leads))
	assert.Equal(t, 12.0, Sum(leads, units))
	assert.Equal(t, 4.0, Mean(leads, units))

	// Aggregating an empty result set stays well-defined.
	assert.Equal(t, 0.0, Sum(nil, units))
	assert.Equal(t, 0.0, Mean(nil, units))
}

func TestCountBy(t *testing.T) {
	leads := []models.Lead{
		{Objekttyp: "Haus"},
		{Objekttyp: "Wohnung"},
		{Objekttyp: "Haus"},
	}

	groups := CountBy(leads, func(l models.Lead) string { return l.Objekttyp })
	require.Len(t, groups, 2)
	assert.Equal(t, Group{Key: "Haus", Count: 2, Value: 2}, groups[0])
	assert.Equal(t, Group{Key: "Wohnung", Count: 1, Value: 1}, groups[1])

	// Zero and single group counts come through unchanged; the
	// presentation layer branches on them.
	assert.Empty(t, CountBy(nil, func(l models.Lead) string { return l.Objekttyp }))
	assert.Len(t, CountBy(leads[:1], func(l models.Lead) string { return l.Objekttyp }), 1)
}

func TestSumByAndMeanBy(t *testing.T) {
	leads := []models.Lead{
		{Bundesland: "Bayern", Zimmeranzahl: 3},
		{Bundesland: "Bayern", Zimmeranzahl: 5},
		{Bundesland: "Berlin", Zimmeranzahl: 2},
	}
	state := func(l models.Lead) string { return l.Bundesland }
	rooms := func(l models.Lead) float64 { return l.Zimmeranzahl }

	sums := SumBy(leads, state, rooms)
	require.Len(t, sums, 2)
	assert.Equal(t, Group{Key: "Bayern", Count: 2, Value: 8}, sums[0])
	assert.Equal(t, Group{Key: "Berlin", Count: 1, Value: 2}, sums[1])

	means := MeanBy(leads, state, rooms)
	require.Len(t, means, 2)
	assert.Equal(t, 4.0, means[0].Value)
	assert.Equal(t, 2.0, means[1].Value)
}

func TestPivot(t *testing.T) {
	leads := []models.Lead{
		{Objekttyp: "Haus", Haustyp: "Einfamilienhaus"},
		{Objekttyp: "Haus", Haustyp: "Reihenhaus"},
		{Objekttyp: "Haus", Haustyp: "Einfamilienhaus"},
		{Objekttyp: "Wohnung", Haustyp: "Reihenhaus"},
	}

	table := Pivot(leads,
		func(l models.Lead) string { return l.Objekttyp },
		func(l models.Lead) string { return l.Haustyp },
	)

	assert.Equal(t, []string{"Haus", "Wohnung"}, table.Rows)
	assert.Equal(t, []string{"Einfamilienhaus", "Reihenhaus"}, table.Cols)
	assert.Equal(t, [][]float64{{2, 1}, {0, 1}}, table.Cells)
}

func TestPivot_Empty(t *testing.T) {
	table := Pivot(nil,
		func(l models.Lead) string { return l.Objekttyp },
		func(l models.Lead) string { return l.Haustyp },
	)
	assert.Empty(t, table.Rows)
	assert.Empty(t, table.Cols)
	assert.Empty(t, table.Cells)
}

func TestCountByMonth(t *testing.T) {
	leads := []models.Lead{
		{CreatedAt: timePtr(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))},
		{CreatedAt: timePtr(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))},
		{CreatedAt: timePtr(time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC))},
		{CreatedAt: nil},
	}

	groups := CountByMonth(leads)
	require.Len(t, groups, 2)
	assert.Equal(t, "Jan-2024", groups[0].Key)
	assert.Equal(t, 1, groups[0].Count)
	assert.Equal(t, "Mar-2024", groups[1].Key)
	assert.Equal(t, 2, groups[1].Count)
}

func TestCountYes(t *testing.T) {
	leads := []models.Lead{
		{Verkaufsgarantie: "Ja"},
		{Verkaufsgarantie: "Nein"},
		{Verkaufsgarantie: "Ja"},
	}
	guarantee := func(l models.Lead) string { return l.Verkaufsgarantie }

	assert.Equal(t, 2, CountYes(leads, guarantee))
	assert.Equal(t, 0, CountYes(nil, guarantee))
}

func TestMeanWohnflaeche_SkipsMissing(t *testing.T) {
	area := 120.0
	leads := []models.Lead{
		{Wohnflaeche: &area},
		{Wohnflaeche: nil},
	}
	assert.Equal(t, 120.0, MeanWohnflaeche(leads))
	assert.Equal(t, 0.0, MeanWohnflaeche(nil))
}
