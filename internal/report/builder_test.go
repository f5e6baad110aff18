package report

import (
	"strings"
	"testing"

	"github.com/plexwatch/plexwatch/internal/analyze"
	"github.com/plexwatch/plexwatch/internal/finance"
)

func i64(v int64) *int64 { return &v }

func sampleAnalysis() Analysis {
	rep := analyze.Report{}
	rep.PropertyOverview.Prix = i64(908000)
	rep.PropertyOverview.TypePropriete = "Duplex"
	rep.PropertyOverview.Ville = "Montréal"
	rep.Revenus.RevenuBrutPotentielAnnuel = i64(27500)
	rep.DepensesVraies.TaxesMunicipales = i64(3120)
	rep.RawDebug.AnalyzerVersion = analyze.Version
	rep.RawDebug.Sources = map[analyze.Field]analyze.Resolution{
		analyze.FieldPrice: {Field: analyze.FieldPrice, Source: analyze.SourceVisibleText, Locator: "anchor-window:0+60"},
	}
	return NewAnalysis("https://example.com/duplex-a-vendre/22469257",
		rep, finance.Compute(finance.FromReport(rep, finance.DefaultAssumptions())))
}

func TestBuildMarkdownRendersResolvedFigures(t *testing.T) {
	mdText := BuildMarkdown(sampleAnalysis())

	for _, want := range []string{
		"908 000 $",
		"Duplex",
		"Montréal",
		"visible-text",
		"## Métriques financières",
	} {
		if !strings.Contains(mdText, want) {
			t.Fatalf("markdown missing %q:\n%s", want, mdText)
		}
	}
}

func TestBuildMarkdownMarksMissingAsNA(t *testing.T) {
	rep := analyze.Report{}
	rep.RawDebug.AnalyzerVersion = analyze.Version
	a := NewAnalysis("", rep, finance.Compute(finance.FromReport(rep, finance.DefaultAssumptions())))

	mdText := BuildMarkdown(a)
	if !strings.Contains(mdText, "| Prix demandé | N/A |") {
		t.Fatalf("expected N/A price row:\n%s", mdText)
	}
	if !strings.Contains(mdText, "Données insuffisantes") {
		t.Fatal("expected missing-inputs notice")
	}
	if strings.Contains(mdText, "| NOI estimé (annuel) | 0 $ |") {
		t.Fatal("missing NOI must not render as zero")
	}
}

func TestSummaryIsShortAndCarriesURL(t *testing.T) {
	a := sampleAnalysis()
	s := Summary(a)
	if !strings.Contains(s, "Prix: 908 000 $") {
		t.Fatalf("summary missing price: %q", s)
	}
	if !strings.Contains(s, a.URL) {
		t.Fatal("summary missing listing URL")
	}
	if strings.Count(s, "\n") > 5 {
		t.Fatalf("summary too long:\n%s", s)
	}
}

func TestRenderHTMLProducesTable(t *testing.T) {
	html, err := RenderHTML(BuildMarkdown(sampleAnalysis()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<table>") {
		t.Fatal("expected a rendered table")
	}
	if !strings.Contains(html, "Analyse d'immeuble") {
		t.Fatal("expected page title")
	}
}

func TestGroupDigits(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		950:     "950",
		27500:   "27 500",
		908000:  "908 000",
		1250000: "1 250 000",
	}
	for in, want := range cases {
		if got := groupDigits(in); got != want {
			t.Fatalf("groupDigits(%d) = %q, want %q", in, got, want)
		}
	}
}
