package analyze

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	listingIDRe  = regexp.MustCompile(`/(\d{7,8})(?:[^0-9]|$)`)
	nbspReplacer = strings.NewReplacer(" ", " ", " ", " ")
)

// Document wraps one listing page and exposes the views the strategies
// need: normalized text lines, meta contents, embedded JSON scripts and
// the canonical listing identifier. Parsing happens once in NewDocument;
// a parse failure leaves an empty document rather than an error, so a
// garbled input degrades to "no strategy finds anything".
type Document struct {
	raw   string
	doc   *goquery.Document
	lines []string
}

func NewDocument(html string) *Document {
	d := &Document{raw: html}
	if strings.TrimSpace(html) == "" {
		return d
	}
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return d
	}
	d.doc = gq
	return d
}

// TextLines returns the document reduced to trimmed, non-empty text
// lines with scripts and styles removed and non-breaking spaces
// normalized. Computed once, cached.
func (d *Document) TextLines() []string {
	if d.lines != nil {
		return d.lines
	}
	d.lines = []string{}
	if d.doc == nil {
		return d.lines
	}
	clone := goquery.CloneDocument(d.doc)
	clone.Find("script, style, noscript").Remove()
	text := nbspReplacer.Replace(clone.Text())
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			d.lines = append(d.lines, ln)
		}
	}
	return d.lines
}

// Meta returns the content attribute of the first matching meta tag,
// looked up by property= or name=.
func (d *Document) Meta(key string) string {
	if d.doc == nil {
		return ""
	}
	sel := d.doc.Find(`meta[property="` + key + `"], meta[name="` + key + `"]`).First()
	content, _ := sel.Attr("content")
	return nbspReplacer.Replace(strings.TrimSpace(content))
}

// JSONLDBlocks returns the bodies of every ld+json script in document
// order.
func (d *Document) JSONLDBlocks() []string {
	if d.doc == nil {
		return nil
	}
	var blocks []string
	d.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if body := strings.TrimSpace(s.Text()); body != "" {
			blocks = append(blocks, body)
		}
	})
	return blocks
}

// StatePayload returns the largest embedded application-state JSON
// script over the configured size floor, or "" when the page carries
// none. Framework hydration scripts (__NEXT_DATA__ and friends) are
// plain application/json scripts in practice.
func (d *Document) StatePayload(minBytes int) string {
	if d.doc == nil {
		return ""
	}
	best := ""
	d.doc.Find(`script[type="application/json"], script#__NEXT_DATA__`).Each(func(_ int, s *goquery.Selection) {
		body := strings.TrimSpace(s.Text())
		if len(body) >= minBytes && len(body) > len(best) {
			best = body
		}
	})
	return best
}

// ListingID recovers the external listing identifier (7-8 digits) from
// og:url, the canonical link, or as a last resort any path-like match in
// the raw markup. An empty string means no identifier was derivable.
func (d *Document) ListingID() string {
	if d.doc != nil {
		if id := matchListingID(d.Meta("og:url")); id != "" {
			return id
		}
		href, _ := d.doc.Find(`link[rel="canonical"]`).First().Attr("href")
		if id := matchListingID(href); id != "" {
			return id
		}
	}
	return matchListingID(d.raw)
}

// ListingIDFromURL extracts the 7-8 digit listing identifier from a
// listing URL, or "" when none is present.
func ListingIDFromURL(u string) string {
	return matchListingID(u)
}

func matchListingID(s string) string {
	m := listingIDRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
