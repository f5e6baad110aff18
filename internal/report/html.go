package report

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts a markdown report into a standalone HTML page for
// the web view.
func RenderHTML(markdown string) (string, error) {
	var content strings.Builder
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>Analyse d'immeuble</title>" +
		"<style>" +
		"body{font-family:system-ui,sans-serif;max-width:860px;margin:2rem auto;padding:0 1rem;color:#1c1917;}" +
		"table{border-collapse:collapse;width:100%;font-size:0.9rem;}" +
		"th,td{border:1px solid #a8a29e;padding:0.35rem 0.5rem;text-align:left;}" +
		"thead th{background:#f1f5f9;}" +
		"blockquote{border-left:3px solid #fcd34d;margin:0;padding:0.2rem 0.8rem;background:#fffbeb;}" +
		"</style></head><body>" +
		content.String() +
		"</body></html>", nil
}
