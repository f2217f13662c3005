package dataset

import (
	"leadsboard/server/internal/models"
)

// Options of the presence toggles in the feature filter row.
const (
	FileAttached    = "Attached"
	FileNotAttached = "Not Attached"
	Provided        = "Provided"
	NoMessage       = "No Message"
)

// FacetFilter is the multi-select filter row above every analytics view.
// An empty selection for a facet matches every row of that facet; a
// non-empty selection keeps rows whose value is one of the selected
// values. Facets combine with AND.
type FacetFilter struct {
	States        []string `form:"state"`
	Cities        []string `form:"city"`
	PostalRegions []string `form:"postal_region"`
	PropertyTypes []string `form:"property_type"`
	SaleGuarantee []string `form:"sale_guarantee"`
	Years         []int    `form:"year"`
	AreaRanges    []string `form:"area_range"`
}

// Apply returns the rows matching every facet. The input slice is never
// mutated, so applying the same filter twice yields the same result.
func (f FacetFilter) Apply(leads []models.Lead) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if !matchString(f.States, l.Bundesland) {
			continue
		}
		if !matchString(f.Cities, l.Ort) {
			continue
		}
		if !matchString(f.PostalRegions, l.PostleitzahlRegion) {
			continue
		}
		if !matchString(f.PropertyTypes, l.Objekttyp) {
			continue
		}
		if !matchString(f.SaleGuarantee, l.Verkaufsgarantie) {
			continue
		}
		if !matchInt(f.Years, l.Baujahr) {
			continue
		}
		if !matchString(f.AreaRanges, l.AreaRange) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FeatureFilter is the second, independent filter row of the lead features
// section. Conditions and Equipment behave like facets; the remaining four
// are presence toggles where selecting both options (or none) keeps every
// row.
type FeatureFilter struct {
	Conditions  []string `form:"condition"`
	Equipment   []string `form:"equipment"`
	Attachments []string `form:"attachment"`
	Messages    []string `form:"message"`
	Rights      []string `form:"rights"`
	Defects     []string `form:"defects"`
}

// Apply filters an already facet-filtered slice by lead features.
func (f FeatureFilter) Apply(leads []models.Lead) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if !matchString(f.Conditions, l.Objektzustand) {
			continue
		}
		if !matchString(f.Equipment, l.Ausstattung) {
			continue
		}
		if !matchToggle(f.Attachments, FileAttached, FileNotAttached, l.Anhaenge > 0) {
			continue
		}
		if !matchToggle(f.Messages, Provided, NoMessage, l.Nachricht != models.NoInformation) {
			continue
		}
		if !matchToggle(f.Rights, Provided, models.NoInformation, l.BesondereRechte != models.NoInformation) {
			continue
		}
		if !matchToggle(f.Defects, Provided, models.NoInformation, l.SchaedenMaengel != models.NoInformation) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchString(selected []string, value string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if s == value {
			return true
		}
	}
	return false
}

func matchInt(selected []int, value int) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if s == value {
			return true
		}
	}
	return false
}

// matchToggle resolves a two-option presence toggle. Only an exclusive
// selection of one option filters; anything else is a no-op.
func matchToggle(selected []string, positive, negative string, present bool) bool {
	hasPositive := contains(selected, positive)
	hasNegative := contains(selected, negative)
	if hasPositive == hasNegative {
		return true
	}
	if hasPositive {
		return present
	}
	return !present
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
