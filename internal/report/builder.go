package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plexwatch/plexwatch/internal/analyze"
	"github.com/plexwatch/plexwatch/internal/finance"
)

// Analysis bundles one listing's extraction report and computed metrics
// for rendering. RunID ties log lines, notifications and stored rows to
// the same analysis run.
type Analysis struct {
	RunID       string
	URL         string
	ListingID   string
	Report      analyze.Report
	Metrics     finance.Outputs
	GeneratedAt time.Time
}

func NewAnalysis(url string, rep analyze.Report, metrics finance.Outputs) Analysis {
	return Analysis{
		RunID:       uuid.NewString(),
		URL:         url,
		ListingID:   rep.RawDebug.ListingID,
		Report:      rep,
		Metrics:     metrics,
		GeneratedAt: time.Now().UTC(),
	}
}

// BuildMarkdown renders the full analysis as a markdown report. Section
// and field labels are French to match the listing market and the fixed
// field names of the record contract.
func BuildMarkdown(a Analysis) string {
	rep := a.Report
	m := a.Metrics
	var b strings.Builder

	fmt.Fprintf(&b, "# Analyse d'immeuble à revenus\n\n")
	if a.ListingID != "" {
		fmt.Fprintf(&b, "- Inscription: %s\n", a.ListingID)
	}
	if a.URL != "" {
		fmt.Fprintf(&b, "- Source: %s\n", a.URL)
	}
	fmt.Fprintf(&b, "- Date: %s\n", a.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Analyse: %s (%s)\n\n", a.RunID, rep.RawDebug.AnalyzerVersion)

	fmt.Fprintf(&b, "## Aperçu de la propriété\n\n")
	fmt.Fprintf(&b, "| Champ | Valeur |\n|-------|--------|\n")
	fmt.Fprintf(&b, "| Prix demandé | %s |\n", fmtMoneyInt(rep.PropertyOverview.Prix))
	fmt.Fprintf(&b, "| Logements | %s |\n", fmtCount(rep.PropertyOverview.NbLogements))
	fmt.Fprintf(&b, "| Type | %s |\n", orNA(rep.PropertyOverview.TypePropriete))
	fmt.Fprintf(&b, "| Ville | %s |\n", orNA(rep.PropertyOverview.Ville))
	fmt.Fprintf(&b, "| Quartier | %s |\n", orNA(rep.PropertyOverview.Quartier))
	fmt.Fprintf(&b, "| Étages | %s |\n", fmtCount(rep.PropertyOverview.NbEtages))
	fmt.Fprintf(&b, "| Superficie habitable | %s pi² |\n", fmtCount(rep.PropertyOverview.SuperficieHabitableSqft))
	fmt.Fprintf(&b, "| Superficie totale | %s pi² |\n", fmtCount(rep.PropertyOverview.SuperficieTotaleSqft))
	fmt.Fprintf(&b, "| Terrain | %s pi² |\n\n", fmtCount(rep.PropertyOverview.SuperficieTerrainSqft))

	fmt.Fprintf(&b, "## Revenus et dépenses\n\n")
	fmt.Fprintf(&b, "- Revenu brut potentiel annuel: %s\n", fmtMoneyInt(rep.Revenus.RevenuBrutPotentielAnnuel))
	fmt.Fprintf(&b, "- Taxes municipales: %s\n", fmtMoneyInt(rep.DepensesVraies.TaxesMunicipales))
	fmt.Fprintf(&b, "- Taxes scolaires: %s\n", fmtMoneyInt(rep.DepensesVraies.TaxesScolaires))
	trueExp := m.TrueExpenses
	fmt.Fprintf(&b, "- Dépenses connues (total): %s\n", fmtMoney(&trueExp))
	fmt.Fprintf(&b, "- Dépenses normalisées (vacance, salaires, entretien, conciergerie): %s\n\n", fmtMoney(m.AssumedExpenses))

	fmt.Fprintf(&b, "## Métriques financières\n\n")
	fmt.Fprintf(&b, "| Métrique | Valeur |\n|----------|--------|\n")
	fmt.Fprintf(&b, "| NOI estimé (annuel) | %s |\n", fmtMoney(m.NOI))
	fmt.Fprintf(&b, "| Taux de capitalisation | %s |\n", fmtPct(m.CapRate))
	fmt.Fprintf(&b, "| NOI / revenu brut | %s |\n", fmtPct(m.NOIPct))
	fmt.Fprintf(&b, "| Mise de fonds | %s |\n", fmtMoney(m.DownPayment))
	fmt.Fprintf(&b, "| Prêt | %s |\n", fmtMoney(m.Loan))
	fmt.Fprintf(&b, "| Mensualité hypothécaire | %s |\n", fmtMoney(m.MonthlyPayment))
	fmt.Fprintf(&b, "| Service de dette annuel | %s |\n", fmtMoney(m.AnnualDebtService))
	fmt.Fprintf(&b, "| DSCR | %s |\n", fmtRatio(m.DSCR))
	fmt.Fprintf(&b, "| NOI requis (DSCR cible) | %s |\n", fmtMoney(m.NOIRequired))
	fmt.Fprintf(&b, "| Cashflow mensuel | %s |\n", fmtMoney(m.CashflowMonthly))
	fmt.Fprintf(&b, "| Cashflow annuel | %s |\n", fmtMoney(m.CashflowAnnual))
	fmt.Fprintf(&b, "| Offre maximale (taux cible) | %s |\n", fmtMoney(m.OfferCeiling))
	if m.RefinanceCash != nil {
		fmt.Fprintf(&b, "| Refinancement potentiel | %s |\n", fmtMoney(m.RefinanceCash))
	}
	fmt.Fprintf(&b, "\n")

	if len(m.MissingInputs) > 0 {
		fmt.Fprintf(&b, "> Données insuffisantes pour certaines métriques: %s\n\n", strings.Join(m.MissingInputs, ", "))
	}

	writeProvenance(&b, rep.RawDebug)
	return b.String()
}

// writeProvenance renders the extraction trail: winning source per
// field, rejected candidates, and applied corrections.
func writeProvenance(b *strings.Builder, dbg analyze.RawDebug) {
	fmt.Fprintf(b, "## Provenance\n\n")
	if len(dbg.Sources) > 0 {
		fields := make([]string, 0, len(dbg.Sources))
		for f := range dbg.Sources {
			fields = append(fields, string(f))
		}
		sort.Strings(fields)
		fmt.Fprintf(b, "| Champ | Source | Localisation |\n|-------|--------|--------------|\n")
		for _, f := range fields {
			res := dbg.Sources[analyze.Field(f)]
			fmt.Fprintf(b, "| %s | %s | %s |\n", f, res.Source, cell(res.Locator))
		}
		fmt.Fprintf(b, "\n")
	}
	if len(dbg.Rejected) > 0 {
		fields := make([]string, 0, len(dbg.Rejected))
		for f := range dbg.Rejected {
			fields = append(fields, string(f))
		}
		sort.Strings(fields)
		fmt.Fprintf(b, "Candidats rejetés:\n\n")
		for _, f := range fields {
			for _, r := range dbg.Rejected[analyze.Field(f)] {
				fmt.Fprintf(b, "- %s: %s (%s) — %s\n", f, r.Value, r.Source, r.Reason)
			}
		}
		fmt.Fprintf(b, "\n")
	}
	for _, c := range dbg.Corrections {
		fmt.Fprintf(b, "- Correction: %s\n", c)
	}
}

// Summary renders the short notification text (chat messages, subject
// lines): the handful of figures a buyer filters on.
func Summary(a Analysis) string {
	rep := a.Report
	m := a.Metrics
	var b strings.Builder

	title := rep.PropertyOverview.TypePropriete
	if title == "" {
		title = "Immeuble"
	}
	fmt.Fprintf(&b, "%s", title)
	if rep.PropertyOverview.Ville != "" {
		fmt.Fprintf(&b, " — %s", rep.PropertyOverview.Ville)
	}
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Prix: %s | Revenus: %s\n",
		fmtMoneyInt(rep.PropertyOverview.Prix),
		fmtMoneyInt(rep.Revenus.RevenuBrutPotentielAnnuel))
	fmt.Fprintf(&b, "NOI: %s | Cap: %s | Cashflow/mois: %s\n",
		fmtMoney(m.NOI), fmtPct(m.CapRate), fmtMoney(m.CashflowMonthly))
	if m.OfferCeiling != nil {
		fmt.Fprintf(&b, "Offre max (taux cible): %s\n", fmtMoney(m.OfferCeiling))
	}
	if a.URL != "" {
		fmt.Fprintf(&b, "%s", a.URL)
	}
	return strings.TrimSpace(b.String())
}

func cell(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	return strings.ReplaceAll(s, "|", "\\|")
}
