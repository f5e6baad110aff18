package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(serverURL string, minBytes int) *Client {
	return NewClient(Config{
		SearchURL:    serverURL + "/fr/plex~a-vendre?uc=0",
		BaseURL:      serverURL,
		MinHTMLBytes: minBytes,
		Timeout:      5 * time.Second,
	})
}

func TestListingSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 10)
	html, err := c.Listing(context.Background(), srv.URL+"/fr/duplex-a-vendre/22469257")
	if err != nil {
		t.Fatal(err)
	}
	if len(html) != 100 {
		t.Fatalf("body length = %d", len(html))
	}
	if !strings.Contains(gotUA, "Mozilla/5.0") || !strings.Contains(gotUA, "Chrome") {
		t.Fatalf("user-agent = %q", gotUA)
	}
	if !strings.HasPrefix(gotLang, "fr-CA") {
		t.Fatalf("accept-language = %q", gotLang)
	}
}

func TestListingTooSmallIsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>blocked</html>"))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 50_000)
	html, err := c.Listing(context.Background(), srv.URL+"/fr/duplex/22469257")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("err = %v, want BlockedError", err)
	}
	if blocked.Len != len(html) || html == "" {
		t.Fatalf("blocked len = %d, body %q", blocked.Len, html)
	}
}

func TestListingNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL, 10).Listing(context.Background(), srv.URL+"/x"); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestDiscoverListingsFiltersAndDedupes(t *testing.T) {
	page := `<html><body>
<a href="/fr/duplex-a-vendre/22469257">un</a>
<a href="/fr/duplex-a-vendre/22469257">encore</a>
<a href="/fr/triplex-a-vendre/21873964">deux</a>
<a href="/fr/maison-a-vendre/19999999">maison</a>
<a href="/en/duplex-for-sale/18888888">anglais</a>
<a href="/fr/plexes-for-sale/17777777">index</a>
<a href="/fr/quadruplex-a-vendre/16666666?view=Map">carte</a>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	urls, err := testClient(srv.URL, 10).DiscoverListings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		srv.URL + "/fr/duplex-a-vendre/22469257",
		srv.URL + "/fr/triplex-a-vendre/21873964",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}
