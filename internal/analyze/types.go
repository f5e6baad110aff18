package analyze

// Version tags the extraction logic so downstream consumers can detect
// behavior changes between deployments.
const Version = "v6-2026-01-full-pipeline"

// Source identifies which extraction strategy produced a candidate.
type Source string

const (
	SourceStructured    Source = "structured"
	SourceEmbeddedState Source = "embedded-state"
	SourceVisibleText   Source = "visible-text"
)

// Field names every strategy may attempt. Numeric fields carry int64
// values through the pipeline; the rest are strings.
type Field string

const (
	FieldPrice          Field = "prix"
	FieldUnits          Field = "nb_logements"
	FieldGrossRevenue   Field = "revenu_brut_potentiel_annuel"
	FieldMunicipalTax   Field = "taxes_municipales"
	FieldSchoolTax      Field = "taxes_scolaires"
	FieldCity           Field = "ville"
	FieldDistrict       Field = "quartier"
	FieldPropertyType   Field = "type_propriete"
	FieldFloors         Field = "nb_etages"
	FieldLivingArea     Field = "superficie_habitable_sqft"
	FieldCommercialArea Field = "superficie_commerciale_sqft"
	FieldTotalArea      Field = "superficie_totale_sqft"
	FieldLotArea        Field = "superficie_terrain_sqft"
)

// Candidate is one strategy's proposal for one field. Ephemeral: it is
// produced per strategy attempt, consumed by the arbiter, and survives
// only inside the provenance trace.
type Candidate struct {
	Field   Field
	Source  Source
	Locator string // key path or label/anchor that matched
	Raw     string // raw matched text (or JSON scalar rendering)
	Num     *int64
	Text    string
	// Correction notes a heuristic transformation applied to the raw
	// value; it is surfaced in the trace when the candidate is produced.
	Correction string
}

// Record is the resolved, one-value-per-field aggregate. Every field is
// independently optional; a nil pointer (or empty string) means no
// strategy produced an accepted value. Immutable after resolution.
type Record struct {
	Price          *int64
	Units          *int64
	GrossRevenue   *int64
	MunicipalTax   *int64
	SchoolTax      *int64
	City           string
	District       string
	PropertyType   string
	Floors         *int64
	LivingArea     *int64
	CommercialArea *int64
	TotalArea      *int64
	LotArea        *int64
}

// Resolution describes how one field was decided.
type Resolution struct {
	Field    Field       `json:"field"`
	Source   Source      `json:"source"`
	Locator  string      `json:"locator,omitempty"`
	Raw      string      `json:"raw,omitempty"`
	Rejected []Rejection `json:"rejected,omitempty"`
}

// Rejection records a losing candidate and why it lost.
type Rejection struct {
	Source Source `json:"source"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Trace is the full per-document provenance trail. It exists for
// debuggability and tests and never feeds back into resolution.
type Trace struct {
	Resolved    map[Field]Resolution  `json:"resolved,omitempty"`
	Rejected    map[Field][]Rejection `json:"rejected,omitempty"`
	Corrections []string              `json:"corrections,omitempty"`
	Strategies  []string              `json:"strategies_run"`
}

// Config carries every tunable the pipeline consults. The zero value is
// not usable; start from DefaultConfig.
type Config struct {
	// MinStructuredPrice is the sanity floor for schema.org offer
	// blocks; trivially small numbers there are never property prices.
	MinStructuredPrice int64
	// PriceCeiling rejects misparsed figures such as municipal
	// evaluations rendered without separators.
	PriceCeiling int64
	// MaxGrossRentMultiplier rejects a price when price/revenue exceeds
	// it (an implausible GRM signals a phantom price).
	MaxGrossRentMultiplier float64
	// MinListingScore is the salience-score threshold a payload node
	// must clear before its fields are trusted.
	MinListingScore int
	// RevenueCorrectionBound: a resolved revenue strictly below this is
	// assumed to be abbreviated thousands and multiplied by 1000.
	RevenueCorrectionBound int64
	// AnchorScanLines / AnchorWindowLines / PrefixFallbackLines bound
	// the visible-text scan.
	AnchorScanLines     int
	AnchorWindowLines   int
	PrefixFallbackLines int
	// MinPayloadBytes is the floor for treating an embedded JSON script
	// as an application-state payload.
	MinPayloadBytes int
}

// DefaultConfig returns the documented defaults. The score threshold and
// both price bounds are empirical; they are configuration, not law.
func DefaultConfig() Config {
	return Config{
		MinStructuredPrice:     20_000,
		PriceCeiling:           15_000_000,
		MaxGrossRentMultiplier: 60,
		MinListingScore:        8,
		RevenueCorrectionBound: 1000,
		AnchorScanLines:        500,
		AnchorWindowLines:      60,
		PrefixFallbackLines:    320,
		MinPayloadBytes:        2048,
	}
}
