package finance

import "github.com/plexwatch/plexwatch/internal/analyze"

// Assumptions are the named, caller-overridable parameters of the
// calculator. They are explicit normalization assumptions, never
// silently blended into known expenses.
type Assumptions struct {
	// VacancyRate is the assumed vacancy loss as a fraction of gross
	// revenue.
	VacancyRate float64
	// SalaryRate is the assumed payroll allowance as a fraction of
	// gross revenue.
	SalaryRate float64
	// MaintenanceFixed and ConciergeFixed are flat annual allowances,
	// substituted only when the listing carries no actual figure.
	MaintenanceFixed float64
	ConciergeFixed   float64

	LoanToValue       float64
	InterestRate      float64 // annual
	AmortizationYears int
	PaymentsPerYear   int

	// TargetDSCR is the coverage ratio a lender requires; the
	// calculator reports the NOI needed to reach it.
	TargetDSCR float64
	// OfferCapRate back-solves the value at which the property yields
	// the target rate, reported as an offer ceiling.
	OfferCapRate float64
}

func DefaultAssumptions() Assumptions {
	return Assumptions{
		VacancyRate:       0.03,
		SalaryRate:        0.05,
		MaintenanceFixed:  610,
		ConciergeFixed:    365,
		LoanToValue:       0.80,
		InterestRate:      0.04,
		AmortizationYears: 40,
		PaymentsPerYear:   12,
		TargetDSCR:        1.10,
		OfferCapRate:      0.05,
	}
}

// Inputs is the resolved listing data the calculator consumes.
// Constructed once, consumed once, never mutated. Every field is
// independently optional; absent expenses default to zero, never to an
// invented figure.
type Inputs struct {
	Price        *int64
	Units        *int64
	GrossRevenue *int64

	MunicipalTax  *int64
	SchoolTax     *int64
	Insurance     *int64
	Utilities     *int64
	Electricity   *int64
	Heating       *int64
	SnowRemoval   *int64
	Maintenance   *int64
	Concierge     *int64
	OtherExpenses *int64

	// MarketValue is an appraised value overriding the refinance
	// valuation; absent, the calculator values the property from NOI at
	// the target cap rate.
	MarketValue *int64

	Assumptions Assumptions
}

// FromReport builds calculator inputs from an analyzed listing.
func FromReport(rep analyze.Report, a Assumptions) Inputs {
	return Inputs{
		Price:         rep.PropertyOverview.Prix,
		Units:         rep.PropertyOverview.NbLogements,
		GrossRevenue:  rep.Revenus.RevenuBrutPotentielAnnuel,
		MunicipalTax:  rep.DepensesVraies.TaxesMunicipales,
		SchoolTax:     rep.DepensesVraies.TaxesScolaires,
		Insurance:     rep.DepensesVraies.Assurances,
		Utilities:     rep.DepensesVraies.ServicesPublics,
		Electricity:   rep.DepensesVraies.Electricite,
		Heating:       rep.DepensesVraies.Chauffage,
		SnowRemoval:   rep.DepensesVraies.Deneigement,
		OtherExpenses: rep.DepensesVraies.AutresDepensesConnues,
		Assumptions:   a,
	}
}

// Outputs are the derived investment metrics. A nil field means the
// minimal input set for it was missing; MissingInputs names what was
// insufficient. Percent-valued fields (CapRate, NOIPct) carry percents,
// not fractions.
type Outputs struct {
	TrueExpenses         float64
	AssumedExpenses      *float64
	NOIBeforeAssumptions *float64
	NOI                  *float64
	NOIPct               *float64
	CapRate              *float64

	Loan              *float64
	DownPayment       *float64
	MonthlyPayment    *float64
	AnnualDebtService *float64
	DSCR              *float64
	NOIRequired       *float64

	CashflowMonthly *float64
	CashflowAnnual  *float64

	OfferCeiling  *float64
	RefinanceCash *float64

	MissingInputs []string
}
