package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Config carries the fetcher's endpoints and thresholds.
type Config struct {
	// SearchURL is the listing-search results page scanned for new
	// listings.
	SearchURL string
	// BaseURL prefixes the relative listing links found on the search
	// page.
	BaseURL string
	// MinHTMLBytes is the suspect-page floor: a listing page smaller
	// than this is a block/interstitial, not a listing.
	MinHTMLBytes int
	Timeout      time.Duration
}

func DefaultConfig() Config {
	return Config{
		SearchURL:    "https://www.centris.ca/fr/plex~a-vendre?uc=0",
		BaseURL:      "https://www.centris.ca",
		MinHTMLBytes: 50_000,
		Timeout:      30 * time.Second,
	}
}

// BlockedError reports a page that came back too small to be a real
// listing. The partial body is still returned alongside it so callers
// can log or inspect it.
type BlockedError struct {
	URL string
	Len int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("suspect html from %s: %d bytes", e.URL, e.Len)
}

// Client fetches listing pages and discovers listing URLs from the
// search page. Plain HTTP with browser-like headers; pages that demand
// script execution are out of reach and surface as BlockedError.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Listing fetches one listing page. A too-small body returns the body
// together with a *BlockedError.
func (c *Client) Listing(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept-Language", "fr-CA,fr;q=0.9,en;q=0.8")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Connection", "keep-alive")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	html := string(body)
	if len(html) < c.cfg.MinHTMLBytes {
		return html, &BlockedError{URL: url, Len: len(html)}
	}
	return html, nil
}

// DiscoverListings scans the search page for plex listing links and
// returns absolute URLs, deduplicated in document order.
func (c *Client) DiscoverListings(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.SearchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search fetch: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("search parse: %w", err)
	}
	return c.filterListingLinks(doc), nil
}

var plexPathMarkers = []string{"/duplex", "/triplex", "/quadruplex", "/plex"}

func (c *Client) filterListingLinks(doc *goquery.Document) []string {
	var urls []string
	seen := map[string]struct{}{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.Contains(href, "plexes-for-sale") || strings.Contains(href, "view=Map") {
			return
		}
		if !strings.HasPrefix(href, "/fr/") {
			return
		}
		match := false
		for _, marker := range plexPathMarkers {
			if strings.Contains(href, marker) {
				match = true
				break
			}
		}
		if !match {
			return
		}
		full := c.cfg.BaseURL + href
		if _, dup := seen[full]; dup {
			return
		}
		seen[full] = struct{}{}
		urls = append(urls, full)
	})
	return urls
}
