package analyze

// Strategy is one extraction source. Each strategy independently
// attempts every field it knows how to find; adding or reordering a
// strategy is a one-line change in the list below.
type Strategy interface {
	Name() string
	Extract(doc *Document) []Candidate
}

// Analyzer runs the ordered strategies over a document and arbitrates
// the candidates into an immutable Report. It is pure and deterministic:
// the same document yields a byte-identical report every time, and no
// input makes it fail, not even an empty string; it degrades to an
// all-null report with the trace explaining why. Safe for concurrent
// use; per-call state lives on the stack.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze extracts a Report from one listing document. urlHint, when
// non-empty, supplies the external listing identifier should the
// document itself not carry one; the resolved identifier also steers
// the embedded-state node selection.
func (a *Analyzer) Analyze(html, urlHint string) Report {
	doc := NewDocument(html)

	listingID := doc.ListingID()
	if listingID == "" && urlHint != "" {
		listingID = matchListingID(urlHint)
	}

	embedded := &embeddedStateStrategy{cfg: a.cfg, listingID: listingID}
	strategies := []Strategy{
		structuredStrategy{cfg: a.cfg},
		embedded,
		visibleTextStrategy{cfg: a.cfg},
	}

	groups := make([][]Candidate, 0, len(strategies))
	names := make([]string, 0, len(strategies))
	total := 0
	for _, s := range strategies {
		cands := s.Extract(doc)
		groups = append(groups, cands)
		names = append(names, s.Name())
		total += len(cands)
	}

	rec, trace := arbiter{cfg: a.cfg}.resolve(groups)
	trace.Strategies = names
	if total == 0 {
		trace.Corrections = append(trace.Corrections, "no strategy produced candidates")
	}
	for _, group := range groups {
		for _, c := range group {
			if c.Correction != "" {
				trace.Corrections = append(trace.Corrections, c.Correction)
			}
		}
	}

	return buildReport(rec, trace, debugInfo{
		listingID:    listingID,
		pickedMode:   string(embedded.lastMode),
		listingScore: embedded.lastScore,
	})
}
