package analyze

// Report is the external contract of the analyzer. The JSON field names
// are fixed; downstream consumers (the calculator, notifiers, stored
// reports) key on them and they must not drift between versions.
type Report struct {
	PropertyOverview PropertyOverview `json:"property_overview"`
	Revenus          Revenus          `json:"revenus"`
	DepensesVraies   DepensesVraies   `json:"depenses_vraies"`
	Metrics          Metrics          `json:"metrics"`
	RawDebug         RawDebug         `json:"raw_debug"`
}

type PropertyOverview struct {
	Prix                     *int64 `json:"prix"`
	NbLogements              *int64 `json:"nb_logements"`
	Ville                    string `json:"ville,omitempty"`
	Quartier                 string `json:"quartier,omitempty"`
	TypePropriete            string `json:"type_propriete,omitempty"`
	NbEtages                 *int64 `json:"nb_etages"`
	SuperficieHabitableSqft  *int64 `json:"superficie_habitable_sqft"`
	SuperficieCommercialSqft *int64 `json:"superficie_commerciale_sqft"`
	SuperficieTotaleSqft     *int64 `json:"superficie_totale_sqft"`
	SuperficieTerrainSqft    *int64 `json:"superficie_terrain_sqft"`
}

type Revenus struct {
	RevenuBrutPotentielAnnuel *int64 `json:"revenu_brut_potentiel_annuel"`
}

type DepensesVraies struct {
	TaxesMunicipales      *int64 `json:"taxes_municipales"`
	TaxesScolaires        *int64 `json:"taxes_scolaires"`
	Assurances            *int64 `json:"assurances"`
	ServicesPublics       *int64 `json:"services_publics"`
	Electricite           *int64 `json:"electricite"`
	Chauffage             *int64 `json:"chauffage"`
	Deneigement           *int64 `json:"deneigement"`
	AutresDepensesConnues *int64 `json:"autres_depenses_connues"`
}

// Metrics holds derived figures the analyzer itself can compute without
// financial assumptions. Fields are omitted rather than zeroed when the
// inputs they need were not extracted.
type Metrics struct {
	NOIEstimeAnnuel       *int64   `json:"noi_estime_annuel,omitempty"`
	CapRateEstime         *float64 `json:"cap_rate_estime,omitempty"` // percent
	CashflowMensuelEstime *float64 `json:"cashflow_mensuel_estime,omitempty"`
}

// RawDebug is the provenance block: which strategy won each field, what
// was rejected and why, and the embedded-state selection trail.
type RawDebug struct {
	AnalyzerVersion string                `json:"analyzer_version"`
	ListingID       string                `json:"listing_id,omitempty"`
	PickedMode      string                `json:"picked_mode,omitempty"`
	ListingScore    int                   `json:"listing_score,omitempty"`
	Sources         map[Field]Resolution  `json:"sources,omitempty"`
	Rejected        map[Field][]Rejection `json:"rejected,omitempty"`
	Corrections     []string              `json:"corrections,omitempty"`
	StrategiesRun   []string              `json:"strategies_run"`
}

type debugInfo struct {
	listingID    string
	pickedMode   string
	listingScore int
}

func buildReport(rec Record, trace Trace, dbg debugInfo) Report {
	return Report{
		PropertyOverview: PropertyOverview{
			Prix:                     rec.Price,
			NbLogements:              rec.Units,
			Ville:                    rec.City,
			Quartier:                 rec.District,
			TypePropriete:            rec.PropertyType,
			NbEtages:                 rec.Floors,
			SuperficieHabitableSqft:  rec.LivingArea,
			SuperficieCommercialSqft: rec.CommercialArea,
			SuperficieTotaleSqft:     rec.TotalArea,
			SuperficieTerrainSqft:    rec.LotArea,
		},
		Revenus: Revenus{
			RevenuBrutPotentielAnnuel: rec.GrossRevenue,
		},
		DepensesVraies: DepensesVraies{
			TaxesMunicipales: rec.MunicipalTax,
			TaxesScolaires:   rec.SchoolTax,
		},
		RawDebug: RawDebug{
			AnalyzerVersion: Version,
			ListingID:       dbg.listingID,
			PickedMode:      dbg.pickedMode,
			ListingScore:    dbg.listingScore,
			Sources:         trace.Resolved,
			Rejected:        trace.Rejected,
			Corrections:     trace.Corrections,
			StrategiesRun:   trace.Strategies,
		},
	}
}
