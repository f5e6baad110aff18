package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/plexwatch/plexwatch/internal/analyze"
	"github.com/plexwatch/plexwatch/internal/fetch"
	"github.com/plexwatch/plexwatch/internal/finance"
)

const listingPage = `<!DOCTYPE html>
<html><head>
<meta property="og:url" content="https://www.centris.ca/fr/duplex~a-vendre~montreal-rosemont/22469257?view=Summary">
<title>Duplex à vendre - Montréal</title>
</head><body>
<h1>Duplex à vendre à Montréal (Rosemont)</h1>
<p>908 000 $</p>
<div>Revenus bruts potentiels</div>
<div>27 500 $</div>
<div>Taxes municipales</div>
<div>3 120 $</div>
</body></html>`

type fakeFetcher struct {
	html string
	err  error
}

func (f *fakeFetcher) Listing(ctx context.Context, url string) (string, error) {
	return f.html, f.err
}

func newServerForTest(fetcher Fetcher) http.Handler {
	return NewServer(analyze.NewAnalyzer(analyze.DefaultConfig()), finance.DefaultAssumptions(), fetcher)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	blob, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(blob))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeAnalyze(t *testing.T, rr *httptest.ResponseRecorder) analyzeResponse {
	t.Helper()
	var resp analyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rr.Body.String())
	}
	return resp
}

func TestAnalyzeWithContent(t *testing.T) {
	h := newServerForTest(nil)
	rr := postJSON(t, h, "/analyze", map[string]any{"content": listingPage})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeAnalyze(t, rr)
	if !resp.OK {
		t.Fatalf("expected ok response")
	}
	if resp.ListingID != "22469257" {
		t.Fatalf("listing id = %q", resp.ListingID)
	}
	if resp.Report.PropertyOverview.Prix == nil || *resp.Report.PropertyOverview.Prix != 908000 {
		t.Fatalf("prix = %v", resp.Report.PropertyOverview.Prix)
	}
	if resp.Report.Revenus.RevenuBrutPotentielAnnuel == nil || *resp.Report.Revenus.RevenuBrutPotentielAnnuel != 27500 {
		t.Fatalf("revenu = %v", resp.Report.Revenus.RevenuBrutPotentielAnnuel)
	}
	// gross 27500, true expenses 3120, assumed 825+1375+610+365
	if resp.Report.Metrics.NOIEstimeAnnuel == nil || *resp.Report.Metrics.NOIEstimeAnnuel != 21205 {
		t.Fatalf("noi = %v", resp.Report.Metrics.NOIEstimeAnnuel)
	}
	if resp.Finance.NOI == nil || *resp.Finance.NOI != 21205 {
		t.Fatalf("finance noi = %v", resp.Finance.NOI)
	}
	// refinance valued at NOI / offer cap rate: (424100 - 908000) * 0.80
	if resp.Finance.RefinanceCash == nil || math.Abs(*resp.Finance.RefinanceCash-(-387120)) > 0.01 {
		t.Fatalf("refinance cash = %v, want -387120", resp.Finance.RefinanceCash)
	}
	if !strings.Contains(resp.Markdown, "908 000 $") {
		t.Fatalf("markdown missing price:\n%s", resp.Markdown)
	}
	if !strings.Contains(resp.Markdown, "Refinancement potentiel") {
		t.Fatalf("markdown missing refinance row:\n%s", resp.Markdown)
	}
	if resp.RunID == "" {
		t.Fatalf("expected a run id")
	}
}

func TestAnalyzeFetchesURL(t *testing.T) {
	h := newServerForTest(&fakeFetcher{html: listingPage})
	rr := postJSON(t, h, "/analyze", map[string]any{"url": "https://www.centris.ca/fr/duplex~a-vendre~montreal-rosemont/22469257"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeAnalyze(t, rr)
	if resp.FetchWarning != "" {
		t.Fatalf("unexpected warning %q", resp.FetchWarning)
	}
	if resp.ListingID != "22469257" {
		t.Fatalf("listing id = %q", resp.ListingID)
	}
}

func TestAnalyzeBlockedPageStillAnalyzed(t *testing.T) {
	blocked := &fetch.BlockedError{URL: "https://www.centris.ca/fr/duplex/22469257", Len: len(listingPage)}
	h := newServerForTest(&fakeFetcher{html: listingPage, err: blocked})
	rr := postJSON(t, h, "/analyze", map[string]any{"url": blocked.URL})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeAnalyze(t, rr)
	if resp.FetchWarning == "" {
		t.Fatalf("expected a fetch warning")
	}
	if resp.Report.PropertyOverview.Prix == nil || *resp.Report.PropertyOverview.Prix != 908000 {
		t.Fatalf("prix = %v", resp.Report.PropertyOverview.Prix)
	}
}

func TestAnalyzeFetchFailure(t *testing.T) {
	h := newServerForTest(&fakeFetcher{err: errors.New("fetch https://x: status 403")})
	rr := postJSON(t, h, "/analyze", map[string]any{"url": "https://x"})
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAnalyzeRequiresURLOrContent(t *testing.T) {
	h := newServerForTest(nil)
	rr := postJSON(t, h, "/analyze", map[string]any{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAnalyzeURLWithoutFetcher(t *testing.T) {
	h := newServerForTest(nil)
	rr := postJSON(t, h, "/analyze", map[string]any{"url": "https://x"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAnalyzeRejectsGet(t *testing.T) {
	h := newServerForTest(nil)
	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newServerForTest(nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["ok"] != true {
		t.Fatalf("payload = %v", payload)
	}
	if payload["version"] != analyze.Version {
		t.Fatalf("version = %v", payload["version"])
	}
}

func TestIndexServesForm(t *testing.T) {
	h := newServerForTest(nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<form") {
		t.Fatalf("expected a form page, got:\n%s", rr.Body.String())
	}
}

func TestIndexFormRendersReport(t *testing.T) {
	h := newServerForTest(nil)
	form := url.Values{"content": {listingPage}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "immeuble à revenus") {
		t.Fatalf("expected rendered report title in:\n%s", body)
	}
	if !strings.Contains(body, "908") {
		t.Fatalf("expected price figure in rendered page")
	}
}

func TestUnknownPathIs404(t *testing.T) {
	h := newServerForTest(nil)
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
}
