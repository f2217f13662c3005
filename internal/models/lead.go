package models

import (
	"strconv"
	"strings"
	"time"
)

// Placeholder values written by the normalizer. Downstream code compares
// against these literals, so they must stay stable.
const (
	NotSpecified  = "Not Specified"
	NoInformation = "No Information"
	FlagNo        = "Nein"
	FlagYes       = "Ja"
	ParkingNo     = "nein"
	ConditionNone = "keine"
)

// AreaRangeLabels are the property area buckets in bin order.
var AreaRangeLabels = []string{
	"Up to 800 sqm",
	"800-1100 sqm",
	"1100-1300 sqm",
	"1300-1500 sqm",
	"1500-2000 sqm",
	"2000-3000 sqm",
	"Above 3000 sqm",
}

// RawLead is one row of the leads worksheet as stored. Every cell is
// nullable; the normalizer is the only component that resolves missing
// values. Column names match the original worksheet headers.
type RawLead struct {
	ID                 *string  `gorm:"column:Id" json:"Id"`
	CreatedAt          *string  `gorm:"column:Created_at" json:"Created_at"`
	Email              *string  `gorm:"column:Email" json:"Email"`
	Vorname            *string  `gorm:"column:Vorname" json:"Vorname"`
	Nachname           *string  `gorm:"column:Nachname" json:"Nachname"`
	Telefon            *string  `gorm:"column:Telefon" json:"Telefon"`
	Quelle             *string  `gorm:"column:Quelle" json:"Quelle"`
	Bundesland         *string  `gorm:"column:bundesland" json:"bundesland"`
	Ort                *string  `gorm:"column:Ort" json:"Ort"`
	Postleitzahl       *string  `gorm:"column:Postleitzahl" json:"Postleitzahl"`
	Strasse            *string  `gorm:"column:Strasse" json:"Strasse"`
	Hausnummer         *string  `gorm:"column:Hausnummer" json:"Hausnummer"`
	Objekttyp          *string  `gorm:"column:Objekttyp" json:"Objekttyp"`
	Haustyp            *string  `gorm:"column:Haustyp" json:"Haustyp"`
	Objektzustand      *string  `gorm:"column:Objektzustand" json:"Objektzustand"`
	Ausstattung        *string  `gorm:"column:Ausstattung" json:"Ausstattung"`
	AktuelleNutzung    *string  `gorm:"column:Aktuelle Nutzung" json:"Aktuelle Nutzung"`
	Baujahr            *string  `gorm:"column:Baujahr" json:"Baujahr"`
	Wohnflaeche        *float64 `gorm:"column:Wohnflaeche" json:"Wohnflaeche"`
	Grundstueckflaeche *float64 `gorm:"column:Grundstueckflaeche" json:"Grundstueckflaeche"`
	Geschaeftsflaeche  *float64 `gorm:"column:Geschaeftsflaeche" json:"Geschaeftsflaeche"`
	Wohneinheiten      *float64 `gorm:"column:Wohneinheiten" json:"Wohneinheiten"`
	Gewerbeeinheiten   *float64 `gorm:"column:Gewerbeeinheiten" json:"Gewerbeeinheiten"`
	Zimmeranzahl       *float64 `gorm:"column:Zimmeranzahl" json:"Zimmeranzahl"`
	Etagenanzahl       *float64 `gorm:"column:Etagenanzahl" json:"Etagenanzahl"`
	Bebaut             *string  `gorm:"column:Bebaut" json:"Bebaut"`
	Alleinlage         *string  `gorm:"column:Alleinlage" json:"Alleinlage"`
	Erschlossen        *string  `gorm:"column:Erschlossen" json:"Erschlossen"`
	Gastwc             *string  `gorm:"column:Gastwc" json:"Gastwc"`
	Vollvermietet      *string  `gorm:"column:Vollvermietet" json:"Vollvermietet"`
	Balkon             *string  `gorm:"column:Balkon" json:"Balkon"`
	Aufzug             *string  `gorm:"column:Aufzug" json:"Aufzug"`
	Dachgeschoss       *string  `gorm:"column:Dachgeschoss" json:"Dachgeschoss"`
	Keller             *string  `gorm:"column:Keller" json:"Keller"`
	Verkaufsgarantie   *string  `gorm:"column:100-Tage-Verkaufsgarantie" json:"100-Tage-Verkaufsgarantie"`
	Verkaufspreis      *string  `gorm:"column:Verkaufspreis" json:"Verkaufspreis"`
	Wertanalyse        *string  `gorm:"column:Wertanalyse" json:"Wertanalyse"`
	Verrentung         *string  `gorm:"column:Verrentung" json:"Verrentung"`
	Parkplatz          *string  `gorm:"column:Parkplatz" json:"Parkplatz"`
	Dach               *string  `gorm:"column:Dach" json:"Dach"`
	Fenster            *string  `gorm:"column:Fenster" json:"Fenster"`
	Leitungen          *string  `gorm:"column:Leitungen" json:"Leitungen"`
	Heizung            *string  `gorm:"column:Heizung" json:"Heizung"`
	Fassade            *string  `gorm:"column:Fassade" json:"Fassade"`
	Badezimmer         *string  `gorm:"column:Badezimmer" json:"Badezimmer"`
	Innenausbau        *string  `gorm:"column:Innenausbau" json:"Innenausbau"`
	Grundriss          *string  `gorm:"column:Grundrissgestaltung" json:"Grundrissgestaltung"`
	Anhaenge           *float64 `gorm:"column:Anhaenge/Dateien" json:"Anhaenge/Dateien"`
	Mieteinnahmen      *string  `gorm:"column:Mieteinnahmen (Kaltmiete)" json:"Mieteinnahmen (Kaltmiete)"`
	ImmobilieUndLage   *string  `gorm:"column:Immobilie und Lage" json:"Immobilie und Lage"`
	Objektinfo         *string  `gorm:"column:Objektinformationen" json:"Objektinformationen"`
	Modernisierungen   *string  `gorm:"column:Modernisierungen" json:"Modernisierungen"`
	SchaedenMaengel    *string  `gorm:"column:Schaeden/Maengel" json:"Schaeden/Maengel"`
	BesondereRechte    *string  `gorm:"column:Informationen zu besonderen Rechten" json:"Informationen zu besonderen Rechten"`
	Nachricht          *string  `gorm:"column:Nachricht" json:"Nachricht"`
}

func (RawLead) TableName() string {
	return "leads"
}

// Lead is a normalized lead record. All columns covered by the default
// table are guaranteed non-null; CreatedAt stays nil when the source value
// was unparseable, Wohnflaeche is outside the default table and stays
// nullable.
type Lead struct {
	ID                 int64      `json:"Id"`
	CreatedAt          *time.Time `json:"Created_at"`
	Email              string     `json:"Email"`
	Vorname            string     `json:"Vorname"`
	Nachname           string     `json:"Nachname"`
	Telefon            string     `json:"Telefon"`
	Quelle             string     `json:"Quelle"`
	Bundesland         string     `json:"bundesland"`
	Ort                string     `json:"Ort"`
	Postleitzahl       string     `json:"Postleitzahl"`
	Strasse            string     `json:"Strasse"`
	Hausnummer         string     `json:"Hausnummer"`
	Objekttyp          string     `json:"Objekttyp"`
	Haustyp            string     `json:"Haustyp"`
	Objektzustand      string     `json:"Objektzustand"`
	Ausstattung        string     `json:"Ausstattung"`
	AktuelleNutzung    string     `json:"Aktuelle Nutzung"`
	Baujahr            int        `json:"Baujahr"`
	Wohnflaeche        *float64   `json:"Wohnflaeche"`
	Grundstueckflaeche float64    `json:"Grundstueckflaeche"`
	Geschaeftsflaeche  float64    `json:"Geschaeftsflaeche"`
	Wohneinheiten      float64    `json:"Wohneinheiten"`
	Gewerbeeinheiten   float64    `json:"Gewerbeeinheiten"`
	Zimmeranzahl       float64    `json:"Zimmeranzahl"`
	Etagenanzahl       float64    `json:"Etagenanzahl"`
	Bebaut             string     `json:"Bebaut"`
	Alleinlage         string     `json:"Alleinlage"`
	Erschlossen        string     `json:"Erschlossen"`
	Gastwc             string     `json:"Gastwc"`
	Vollvermietet      string     `json:"Vollvermietet"`
	Balkon             string     `json:"Balkon"`
	Aufzug             string     `json:"Aufzug"`
	Dachgeschoss       string     `json:"Dachgeschoss"`
	Keller             string     `json:"Keller"`
	Verkaufsgarantie   string     `json:"100-Tage-Verkaufsgarantie"`
	Verkaufspreis      string     `json:"Verkaufspreis"`
	Wertanalyse        string     `json:"Wertanalyse"`
	Verrentung         string     `json:"Verrentung"`
	Parkplatz          string     `json:"Parkplatz"`
	Dach               string     `json:"Dach"`
	Fenster            string     `json:"Fenster"`
	Leitungen          string     `json:"Leitungen"`
	Heizung            string     `json:"Heizung"`
	Fassade            string     `json:"Fassade"`
	Badezimmer         string     `json:"Badezimmer"`
	Innenausbau        string     `json:"Innenausbau"`
	Grundriss          string     `json:"Grundrissgestaltung"`
	Anhaenge           float64    `json:"Anhaenge/Dateien"`
	Mieteinnahmen      string     `json:"Mieteinnahmen (Kaltmiete)"`
	ImmobilieUndLage   string     `json:"Immobilie und Lage"`
	Objektinfo         string     `json:"Objektinformationen"`
	Modernisierungen   string     `json:"Modernisierungen"`
	SchaedenMaengel    string     `json:"Schaeden/Maengel"`
	BesondereRechte    string     `json:"Informationen zu besonderen Rechten"`
	Nachricht          string     `json:"Nachricht"`

	// Derived during normalization.
	PostleitzahlRegion string `json:"Postleitzahl_2"`
	AreaRange          string `json:"property_area_range"`
}

// ToRaw converts a normalized lead back into a worksheet row for writing.
// Derived columns are not persisted.
func (l Lead) ToRaw() RawLead {
	id := strconv.FormatInt(l.ID, 10)
	baujahr := strconv.Itoa(l.Baujahr)
	raw := RawLead{
		ID:                 &id,
		Email:              strPtr(l.Email),
		Vorname:            strPtr(l.Vorname),
		Nachname:           strPtr(l.Nachname),
		Telefon:            strPtr(l.Telefon),
		Quelle:             strPtr(l.Quelle),
		Bundesland:         strPtr(l.Bundesland),
		Ort:                strPtr(l.Ort),
		Postleitzahl:       strPtr(l.Postleitzahl),
		Strasse:            strPtr(l.Strasse),
		Hausnummer:         strPtr(l.Hausnummer),
		Objekttyp:          strPtr(l.Objekttyp),
		Haustyp:            strPtr(l.Haustyp),
		Objektzustand:      strPtr(l.Objektzustand),
		Ausstattung:        strPtr(l.Ausstattung),
		AktuelleNutzung:    strPtr(l.AktuelleNutzung),
		Baujahr:            &baujahr,
		Wohnflaeche:        l.Wohnflaeche,
		Grundstueckflaeche: floatPtr(l.Grundstueckflaeche),
		Geschaeftsflaeche:  floatPtr(l.Geschaeftsflaeche),
		Wohneinheiten:      floatPtr(l.Wohneinheiten),
		Gewerbeeinheiten:   floatPtr(l.Gewerbeeinheiten),
		Zimmeranzahl:       floatPtr(l.Zimmeranzahl),
		Etagenanzahl:       floatPtr(l.Etagenanzahl),
		Bebaut:             strPtr(l.Bebaut),
		Alleinlage:         strPtr(l.Alleinlage),
		Erschlossen:        strPtr(l.Erschlossen),
		Gastwc:             strPtr(l.Gastwc),
		Vollvermietet:      strPtr(l.Vollvermietet),
		Balkon:             strPtr(l.Balkon),
		Aufzug:             strPtr(l.Aufzug),
		Dachgeschoss:       strPtr(l.Dachgeschoss),
		Keller:             strPtr(l.Keller),
		Verkaufsgarantie:   strPtr(l.Verkaufsgarantie),
		Verkaufspreis:      strPtr(l.Verkaufspreis),
		Wertanalyse:        strPtr(l.Wertanalyse),
		Verrentung:         strPtr(l.Verrentung),
		Parkplatz:          strPtr(l.Parkplatz),
		Dach:               strPtr(l.Dach),
		Fenster:            strPtr(l.Fenster),
		Leitungen:          strPtr(l.Leitungen),
		Heizung:            strPtr(l.Heizung),
		Fassade:            strPtr(l.Fassade),
		Badezimmer:         strPtr(l.Badezimmer),
		Innenausbau:        strPtr(l.Innenausbau),
		Grundriss:          strPtr(l.Grundriss),
		Anhaenge:           floatPtr(l.Anhaenge),
		Mieteinnahmen:      strPtr(l.Mieteinnahmen),
		ImmobilieUndLage:   strPtr(l.ImmobilieUndLage),
		Objektinfo:         strPtr(l.Objektinfo),
		Modernisierungen:   strPtr(l.Modernisierungen),
		SchaedenMaengel:    strPtr(l.SchaedenMaengel),
		BesondereRechte:    strPtr(l.BesondereRechte),
		Nachricht:          strPtr(l.Nachricht),
	}
	if l.CreatedAt != nil {
		created := l.CreatedAt.Format("2006-01-02 15:04:05")
		raw.CreatedAt = &created
	}
	return raw
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

// LeadColumns is the expected worksheet header, in order. Imports must
// provide every one of these columns.
var LeadColumns = []string{
	"Id",
	"Created_at",
	"Email",
	"Vorname",
	"Nachname",
	"Telefon",
	"Quelle",
	"bundesland",
	"Ort",
	"Postleitzahl",
	"Strasse",
	"Hausnummer",
	"Objekttyp",
	"Haustyp",
	"Objektzustand",
	"Ausstattung",
	"Aktuelle Nutzung",
	"Baujahr",
	"Wohnflaeche",
	"Grundstueckflaeche",
	"Geschaeftsflaeche",
	"Wohneinheiten",
	"Gewerbeeinheiten",
	"Zimmeranzahl",
	"Etagenanzahl",
	"Bebaut",
	"Alleinlage",
	"Erschlossen",
	"Gastwc",
	"Vollvermietet",
	"Balkon",
	"Aufzug",
	"Dachgeschoss",
	"Keller",
	"100-Tage-Verkaufsgarantie",
	"Verkaufspreis",
	"Wertanalyse",
	"Verrentung",
	"Parkplatz",
	"Dach",
	"Fenster",
	"Leitungen",
	"Heizung",
	"Fassade",
	"Badezimmer",
	"Innenausbau",
	"Grundrissgestaltung",
	"Anhaenge/Dateien",
	"Mieteinnahmen (Kaltmiete)",
	"Immobilie und Lage",
	"Objektinformationen",
	"Modernisierungen",
	"Schaeden/Maengel",
	"Informationen zu besonderen Rechten",
	"Nachricht",
}

// numericColumns are worksheet columns parsed as numbers when importing.
// Baujahr is deliberately absent: bad year values must survive into the
// normalizer, which decides whether to drop the row.
var numericColumns = map[string]bool{
	"Wohnflaeche":        true,
	"Grundstueckflaeche": true,
	"Geschaeftsflaeche":  true,
	"Wohneinheiten":      true,
	"Gewerbeeinheiten":   true,
	"Zimmeranzahl":       true,
	"Etagenanzahl":       true,
	"Anhaenge/Dateien":   true,
}

// SetCell assigns one worksheet cell to its field. Empty cells stay nil,
// as do numeric cells that fail to parse. Unknown columns are ignored.
func (r *RawLead) SetCell(column, cell string) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return
	}

	if numericColumns[column] {
		v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
		if err != nil {
			return
		}
		switch column {
		case "Wohnflaeche":
			r.Wohnflaeche = &v
		case "Grundstueckflaeche":
			r.Grundstueckflaeche = &v
		case "Geschaeftsflaeche":
			r.Geschaeftsflaeche = &v
		case "Wohneinheiten":
			r.Wohneinheiten = &v
		case "Gewerbeeinheiten":
			r.Gewerbeeinheiten = &v
		case "Zimmeranzahl":
			r.Zimmeranzahl = &v
		case "Etagenanzahl":
			r.Etagenanzahl = &v
		case "Anhaenge/Dateien":
			r.Anhaenge = &v
		}
		return
	}

	s := cell
	switch column {
	case "Id":
		r.ID = &s
	case "Created_at":
		r.CreatedAt = &s
	case "Email":
		r.Email = &s
	case "Vorname":
		r.Vorname = &s
	case "Nachname":
		r.Nachname = &s
	case "Telefon":
		r.Telefon = &s
	case "Quelle":
		r.Quelle = &s
	case "bundesland":
		r.Bundesland = &s
	case "Ort":
		r.Ort = &s
	case "Postleitzahl":
		r.Postleitzahl = &s
	case "Strasse":
		r.Strasse = &s
	case "Hausnummer":
		r.Hausnummer = &s
	case "Objekttyp":
		r.Objekttyp = &s
	case "Haustyp":
		r.Haustyp = &s
	case "Objektzustand":
		r.Objektzustand = &s
	case "Ausstattung":
		r.Ausstattung = &s
	case "Aktuelle Nutzung":
		r.AktuelleNutzung = &s
	case "Baujahr":
		r.Baujahr = &s
	case "Bebaut":
		r.Bebaut = &s
	case "Alleinlage":
		r.Alleinlage = &s
	case "Erschlossen":
		r.Erschlossen = &s
	case "Gastwc":
		r.Gastwc = &s
	case "Vollvermietet":
		r.Vollvermietet = &s
	case "Balkon":
		r.Balkon = &s
	case "Aufzug":
		r.Aufzug = &s
	case "Dachgeschoss":
		r.Dachgeschoss = &s
	case "Keller":
		r.Keller = &s
	case "100-Tage-Verkaufsgarantie":
		r.Verkaufsgarantie = &s
	case "Verkaufspreis":
		r.Verkaufspreis = &s
	case "Wertanalyse":
		r.Wertanalyse = &s
	case "Verrentung":
		r.Verrentung = &s
	case "Parkplatz":
		r.Parkplatz = &s
	case "Dach":
		r.Dach = &s
	case "Fenster":
		r.Fenster = &s
	case "Leitungen":
		r.Leitungen = &s
	case "Heizung":
		r.Heizung = &s
	case "Fassade":
		r.Fassade = &s
	case "Badezimmer":
		r.Badezimmer = &s
	case "Innenausbau":
		r.Innenausbau = &s
	case "Grundrissgestaltung":
		r.Grundriss = &s
	case "Mieteinnahmen (Kaltmiete)":
		r.Mieteinnahmen = &s
	case "Immobilie und Lage":
		r.ImmobilieUndLage = &s
	case "Objektinformationen":
		r.Objektinfo = &s
	case "Modernisierungen":
		r.Modernisierungen = &s
	case "Schaeden/Maengel":
		r.SchaedenMaengel = &s
	case "Informationen zu besonderen Rechten":
		r.BesondereRechte = &s
	case "Nachricht":
		r.Nachricht = &s
	}
}
