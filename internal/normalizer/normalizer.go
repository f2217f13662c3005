package normalizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"leadsboard/server/internal/models"
)

// Baujahr values outside this range mark a row as unusable.
const (
	minBaujahr = 1000
	maxBaujahr = 9999
)

// areaBinEdges are the property area bin edges. Each bucket is
// left-exclusive and right-inclusive: (0,800], (800,1100], ... (3000,12900].
var areaBinEdges = []float64{0, 800, 1100, 1300, 1500, 2000, 3000, 12900}

var createdAtLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Normalizer turns raw worksheet rows into cleaned leads. It performs no
// I/O; the logger only reports how many rows were silently dropped.
type Normalizer struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *Normalizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Normalizer{logger: logger}
}

// Normalize runs the cleaning sequence over the raw table. The step order
// is fixed: the Grundstueckflaeche mean is computed from the table as
// loaded, before any rows are excluded for a bad Baujahr, and the area
// binning sees only filled values. A row whose Id cannot be coerced to an
// integer fails the whole load.
func (n *Normalizer) Normalize(raw []models.RawLead) ([]models.Lead, error) {
	meanArea := meanGrundstueckflaeche(raw)

	leads := make([]models.Lead, 0, len(raw))
	dropped := 0
	for i, row := range raw {
		id, err := parseID(row.ID)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		baujahr, ok := parseBaujahr(row.Baujahr)
		if !ok {
			dropped++
			continue
		}

		area := meanArea
		if row.Grundstueckflaeche != nil {
			area = *row.Grundstueckflaeche
		}

		postleitzahl := fillString(row.Postleitzahl, models.NotSpecified)

		lead := models.Lead{
			ID:        id,
			CreatedAt: parseCreatedAt(row.CreatedAt),

			Email:      fillString(row.Email, ""),
			Vorname:    fillString(row.Vorname, ""),
			Nachname:   fillString(row.Nachname, ""),
			Telefon:    fillString(row.Telefon, ""),
			Quelle:     fillString(row.Quelle, ""),
			Strasse:    fillString(row.Strasse, ""),
			Hausnummer: fillString(row.Hausnummer, ""),

			Bundesland:      fillString(row.Bundesland, models.NotSpecified),
			Ort:             fillString(row.Ort, models.NotSpecified),
			Postleitzahl:    postleitzahl,
			Objekttyp:       fillString(row.Objekttyp, models.NotSpecified),
			Haustyp:         fillString(row.Haustyp, models.NotSpecified),
			Objektzustand:   fillString(row.Objektzustand, models.NotSpecified),
			Ausstattung:     fillString(row.Ausstattung, models.NotSpecified),
			AktuelleNutzung: fillString(row.AktuelleNutzung, models.NotSpecified),

			Baujahr:            baujahr,
			Wohnflaeche:        row.Wohnflaeche,
			Grundstueckflaeche: area,
			Geschaeftsflaeche:  fillFloat(row.Geschaeftsflaeche),
			Wohneinheiten:      fillFloat(row.Wohneinheiten),
			Gewerbeeinheiten:   fillFloat(row.Gewerbeeinheiten),
			Zimmeranzahl:       fillFloat(row.Zimmeranzahl),
			Etagenanzahl:       fillFloat(row.Etagenanzahl),
			Anhaenge:           fillFloat(row.Anhaenge),

			Bebaut:           fillString(row.Bebaut, models.FlagNo),
			Alleinlage:       fillString(row.Alleinlage, models.FlagNo),
			Erschlossen:      fillString(row.Erschlossen, models.FlagNo),
			Gastwc:           fillString(row.Gastwc, models.FlagNo),
			Vollvermietet:    fillString(row.Vollvermietet, models.FlagNo),
			Balkon:           fillString(row.Balkon, models.FlagNo),
			Aufzug:           fillString(row.Aufzug, models.FlagNo),
			Dachgeschoss:     fillString(row.Dachgeschoss, models.FlagNo),
			Keller:           fillString(row.Keller, models.FlagNo),
			Verkaufsgarantie: fillString(row.Verkaufsgarantie, models.FlagNo),
			Verkaufspreis:    fillString(row.Verkaufspreis, models.FlagNo),
			Wertanalyse:      fillString(row.Wertanalyse, models.FlagNo),
			Verrentung:       fillString(row.Verrentung, models.FlagNo),

			Parkplatz: fillString(row.Parkplatz, models.ParkingNo),

			Dach:        fillString(row.Dach, models.ConditionNone),
			Fenster:     fillString(row.Fenster, models.ConditionNone),
			Leitungen:   fillString(row.Leitungen, models.ConditionNone),
			Heizung:     fillString(row.Heizung, models.ConditionNone),
			Fassade:     fillString(row.Fassade, models.ConditionNone),
			Badezimmer:  fillString(row.Badezimmer, models.ConditionNone),
			Innenausbau: fillString(row.Innenausbau, models.ConditionNone),
			Grundriss:   fillString(row.Grundriss, models.ConditionNone),

			ImmobilieUndLage: fillString(row.ImmobilieUndLage, models.NoInformation),
			Objektinfo:       fillString(row.Objektinfo, models.NoInformation),
			Modernisierungen: fillString(row.Modernisierungen, models.NoInformation),
			SchaedenMaengel:  fillString(row.SchaedenMaengel, models.NoInformation),
			BesondereRechte:  fillString(row.BesondereRechte, models.NoInformation),
			Nachricht:        fillString(row.Nachricht, models.NoInformation),

			// The locale-aware currency cleaning for this column is
			// disabled; the raw string survives, only missing values
			// become "0".
			Mieteinnahmen: fillString(row.Mieteinnahmen, "0"),

			PostleitzahlRegion: postleitzahlRegion(postleitzahl),
			AreaRange:          AreaRange(area),
		}

		leads = append(leads, lead)
	}

	if dropped > 0 {
		n.logger.WithField("rows", dropped).Debug("Dropped rows with invalid Baujahr")
	}

	return leads, nil
}

// AreaRange returns the bucket label for a lot area, or "" when the value
// falls outside every bin.
func AreaRange(area float64) string {
	for i := 1; i < len(areaBinEdges); i++ {
		if area > areaBinEdges[i-1] && area <= areaBinEdges[i] {
			return models.AreaRangeLabels[i-1]
		}
	}
	return ""
}

func meanGrundstueckflaeche(raw []models.RawLead) float64 {
	var sum float64
	var count int
	for _, row := range raw {
		if row.Grundstueckflaeche != nil {
			sum += *row.Grundstueckflaeche
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func parseID(cell *string) (int64, error) {
	if cell == nil {
		return 0, fmt.Errorf("missing Id")
	}
	s := strings.TrimSpace(*cell)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	// Spreadsheet backends may deliver integer cells as floats ("17.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
		return int64(f), nil
	}
	return 0, fmt.Errorf("invalid Id %q", s)
}

// parseBaujahr reports whether the row is usable. Missing, non-numeric and
// out-of-range years all exclude the row.
func parseBaujahr(cell *string) (int, bool) {
	if cell == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*cell), 64)
	if err != nil {
		return 0, false
	}
	year := int(math.Round(f))
	if year < minBaujahr || year > maxBaujahr {
		return 0, false
	}
	return year, true
}

func parseCreatedAt(cell *string) *time.Time {
	if cell == nil {
		return nil
	}
	s := strings.TrimSpace(*cell)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func postleitzahlRegion(postleitzahl string) string {
	if postleitzahl == models.NotSpecified {
		return postleitzahl
	}
	if len(postleitzahl) < 2 {
		return "DE-" + postleitzahl
	}
	return "DE-" + postleitzahl[len(postleitzahl)-2:]
}

func fillString(cell *string, def string) string {
	if cell == nil {
		return def
	}
	return *cell
}

func fillFloat(cell *float64) float64 {
	if cell == nil {
		return 0
	}
	return *cell
}
