package finance

import (
	"math"

	"github.com/plexwatch/plexwatch/internal/analyze"
)

// Compute maps resolved listing inputs to investment metrics. Pure and
// deterministic; missing inputs degrade the affected outputs to nil
// rather than producing an error.
func Compute(in Inputs) Outputs {
	a := in.Assumptions
	var out Outputs

	out.TrueExpenses = sumKnown(
		in.MunicipalTax, in.SchoolTax, in.Insurance, in.Utilities,
		in.Electricity, in.Heating, in.SnowRemoval,
		in.Maintenance, in.Concierge, in.OtherExpenses,
	)

	if in.GrossRevenue == nil {
		out.MissingInputs = append(out.MissingInputs, "revenu_brut_potentiel_annuel")
	}
	if in.Price == nil {
		out.MissingInputs = append(out.MissingInputs, "prix")
	}

	if in.GrossRevenue != nil {
		gross := float64(*in.GrossRevenue)

		noiBefore := gross - out.TrueExpenses
		out.NOIBeforeAssumptions = &noiBefore

		assumed := gross*a.VacancyRate + gross*a.SalaryRate
		if in.Maintenance == nil {
			assumed += a.MaintenanceFixed
		}
		if in.Concierge == nil {
			assumed += a.ConciergeFixed
		}
		out.AssumedExpenses = &assumed

		noi := gross - out.TrueExpenses - assumed
		out.NOI = &noi
		if gross > 0 {
			pct := noi / gross * 100
			out.NOIPct = &pct
		}
		if a.OfferCapRate > 0 {
			ceiling := noi / a.OfferCapRate
			out.OfferCeiling = &ceiling
		}
	}

	if in.Price != nil && *in.Price > 0 {
		price := float64(*in.Price)

		loan := price * a.LoanToValue
		down := price - loan
		out.Loan = &loan
		out.DownPayment = &down

		n := a.AmortizationYears * a.PaymentsPerYear
		pmt := paymentPerPeriod(loan, a.InterestRate, a.PaymentsPerYear, n)
		ads := pmt * float64(a.PaymentsPerYear)
		out.MonthlyPayment = &pmt
		out.AnnualDebtService = &ads

		required := ads * a.TargetDSCR
		out.NOIRequired = &required

		if out.NOI != nil {
			noi := *out.NOI
			capRate := noi / price * 100
			out.CapRate = &capRate
			if ads > 0 {
				dscr := noi / ads
				out.DSCR = &dscr
			}
			annual := noi - ads
			monthly := noi/12 - pmt
			out.CashflowAnnual = &annual
			out.CashflowMonthly = &monthly
		}

		// Refinance valuation: the appraisal when supplied, otherwise
		// the value back-solved from NOI at the target cap rate.
		valuation := out.OfferCeiling
		if in.MarketValue != nil {
			v := float64(*in.MarketValue)
			valuation = &v
		}
		if valuation != nil {
			refi := (*valuation - price) * a.LoanToValue
			out.RefinanceCash = &refi
		}
	}

	return out
}

// ListingMetrics projects the computed figures into the report's
// metrics block.
func (o Outputs) ListingMetrics() analyze.Metrics {
	var m analyze.Metrics
	if o.NOI != nil {
		v := int64(math.Round(*o.NOI))
		m.NOIEstimeAnnuel = &v
	}
	m.CapRateEstime = o.CapRate
	m.CashflowMensuelEstime = o.CashflowMonthly
	return m
}

// paymentPerPeriod is the fixed-rate amortizing-loan payment. A zero
// rate degrades to straight-line principal repayment.
func paymentPerPeriod(principal, annualRate float64, periodsPerYear, n int) float64 {
	if principal <= 0 || n <= 0 {
		return 0
	}
	if annualRate == 0 {
		return principal / float64(n)
	}
	r := annualRate / float64(periodsPerYear)
	return principal * r / (1 - math.Pow(1+r, -float64(n)))
}

func sumKnown(vals ...*int64) float64 {
	total := 0.0
	for _, v := range vals {
		if v != nil {
			total += float64(*v)
		}
	}
	return total
}
