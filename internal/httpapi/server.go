package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/plexwatch/plexwatch/internal/analyze"
	"github.com/plexwatch/plexwatch/internal/fetch"
	"github.com/plexwatch/plexwatch/internal/finance"
	"github.com/plexwatch/plexwatch/internal/report"
)

// Fetcher retrieves a listing page by URL. Satisfied by *fetch.Client.
type Fetcher interface {
	Listing(ctx context.Context, url string) (string, error)
}

type Server struct {
	analyzer    *analyze.Analyzer
	assumptions finance.Assumptions
	fetcher     Fetcher
}

func NewServer(analyzer *analyze.Analyzer, assumptions finance.Assumptions, fetcher Fetcher) http.Handler {
	s := &Server{
		analyzer:    analyzer,
		assumptions: assumptions,
		fetcher:     fetcher,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"ok":    false,
		"error": map[string]any{"message": message},
	})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

type analyzeRequest struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

type analyzeResponse struct {
	OK           bool            `json:"ok"`
	RunID        string          `json:"run_id"`
	URL          string          `json:"url,omitempty"`
	ListingID    string          `json:"listing_id,omitempty"`
	FetchWarning string          `json:"fetch_warning,omitempty"`
	Report       analyze.Report  `json:"report"`
	Finance      finance.Outputs `json:"finance"`
	Markdown     string          `json:"markdown"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req analyzeRequest
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	resp, status, errMsg := s.analyzeOne(r.Context(), req)
	if errMsg != "" {
		writeError(w, status, errMsg)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// analyzeOne runs the full pipeline for one request: fetch if needed,
// extract, compute metrics, render. Shared by the JSON endpoint and the
// form page.
func (s *Server) analyzeOne(ctx context.Context, req analyzeRequest) (analyzeResponse, int, string) {
	html := req.Content
	warning := ""
	if html == "" {
		if strings.TrimSpace(req.URL) == "" {
			return analyzeResponse{}, http.StatusBadRequest, "either url or content is required"
		}
		if s.fetcher == nil {
			return analyzeResponse{}, http.StatusBadRequest, "url fetching is disabled; pass content instead"
		}
		body, err := s.fetcher.Listing(ctx, req.URL)
		var blocked *fetch.BlockedError
		switch {
		case errors.As(err, &blocked):
			// Partial pages still carry metadata worth extracting.
			html = body
			warning = err.Error()
		case err != nil:
			return analyzeResponse{}, http.StatusBadGateway, err.Error()
		default:
			html = body
		}
	}

	rep := s.analyzer.Analyze(html, req.URL)
	out := finance.Compute(finance.FromReport(rep, s.assumptions))
	rep.Metrics = out.ListingMetrics()

	analysis := report.NewAnalysis(req.URL, rep, out)
	return analyzeResponse{
		OK:           true,
		RunID:        analysis.RunID,
		URL:          req.URL,
		ListingID:    rep.RawDebug.ListingID,
		FetchWarning: warning,
		Report:       rep,
		Finance:      out,
		Markdown:     report.BuildMarkdown(analysis),
	}, http.StatusOK, ""
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"version": analyze.Version,
	})
}
