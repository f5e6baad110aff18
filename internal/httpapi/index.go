package httpapi

import (
	"net/http"
	"strings"

	"github.com/plexwatch/plexwatch/internal/report"
)

const indexPage = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>plexwatch</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
input[type=url], textarea { width: 100%; }
textarea { height: 10rem; }
</style>
</head>
<body>
<h1>plexwatch</h1>
<p>Analysez une fiche d'immeuble à revenus par URL ou en collant le HTML.</p>
<form method="post" action="/">
<p><label>URL de la fiche<br><input type="url" name="url" placeholder="https://www.centris.ca/fr/duplex~a-vendre~..."></label></p>
<p><label>ou HTML de la page<br><textarea name="content"></textarea></label></p>
<p><button type="submit">Analyser</button></p>
</form>
</body>
</html>
`

// handleIndex serves the form on GET and a rendered analysis on POST.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexPage))
	case http.MethodPost:
		s.handleFormAnalyze(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleFormAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := analyzeRequest{
		URL:     strings.TrimSpace(r.PostFormValue("url")),
		Content: r.PostFormValue("content"),
	}
	resp, status, errMsg := s.analyzeOne(r.Context(), req)
	if errMsg != "" {
		http.Error(w, errMsg, status)
		return
	}
	page, err := report.RenderHTML(resp.Markdown)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}
