package watcher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/plexwatch/plexwatch/internal/analyze"
	"github.com/plexwatch/plexwatch/internal/fetch"
	"github.com/plexwatch/plexwatch/internal/finance"
)

const listingPage = `<!DOCTYPE html>
<html><head>
<meta property="og:url" content="https://www.centris.ca/fr/duplex~a-vendre~montreal/21873964">
</head><body>
<h1>Duplex à vendre à Montréal</h1>
<p>908 000 $</p>
<div>Revenus bruts potentiels</div>
<div>27 500 $</div>
<div>Taxes municipales</div>
<div>3 120 $</div>
</body></html>`

type fakeSource struct {
	urls        []string
	discoverErr error
	pages       map[string]string
	pageErrs    map[string]error
	fetches     []string
}

func (f *fakeSource) DiscoverListings(ctx context.Context) ([]string, error) {
	return f.urls, f.discoverErr
}

func (f *fakeSource) Listing(ctx context.Context, url string) (string, error) {
	f.fetches = append(f.fetches, url)
	if err, ok := f.pageErrs[url]; ok {
		return f.pages[url], err
	}
	return f.pages[url], nil
}

type fakeStore struct {
	seen   map[string]bool
	marked []string
}

func (f *fakeStore) IsSeen(id string) (bool, error) { return f.seen[id], nil }

func (f *fakeStore) MarkSeen(id, url string) error {
	f.seen[id] = true
	f.marked = append(f.marked, id)
	return nil
}

type fakeNotifier struct {
	msgs []string
}

func (f *fakeNotifier) Notify(ctx context.Context, text string) error {
	f.msgs = append(f.msgs, text)
	return nil
}

func newWatcherForTest(source *fakeSource, store *fakeStore, notifier *fakeNotifier) *Watcher {
	w := New(DefaultConfig(), source, store, notifier, analyze.NewAnalyzer(analyze.DefaultConfig()), finance.DefaultAssumptions())
	w.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return w
}

func TestSweepReportsNewAndSkipsSeen(t *testing.T) {
	newURL := "https://www.centris.ca/fr/duplex~a-vendre~montreal/21873964"
	seenURL := "https://www.centris.ca/fr/triplex~a-vendre~laval/22469257"
	source := &fakeSource{
		urls:  []string{seenURL, newURL},
		pages: map[string]string{newURL: listingPage},
	}
	store := &fakeStore{seen: map[string]bool{"22469257": true}}
	notifier := &fakeNotifier{}

	w := newWatcherForTest(source, store, notifier)
	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if len(source.fetches) != 1 || source.fetches[0] != newURL {
		t.Fatalf("fetched %v, want only the new listing", source.fetches)
	}
	if len(notifier.msgs) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.msgs))
	}
	msg := notifier.msgs[0]
	if !strings.Contains(msg, "908 000 $") {
		t.Fatalf("notification missing price:\n%s", msg)
	}
	if !strings.Contains(msg, newURL) {
		t.Fatalf("notification missing url:\n%s", msg)
	}
	if len(store.marked) != 1 || store.marked[0] != "21873964" {
		t.Fatalf("marked %v, want [21873964]", store.marked)
	}
}

func TestSweepBlockedPageNotifiesAndLeavesUnmarked(t *testing.T) {
	url := "https://www.centris.ca/fr/duplex~a-vendre~montreal/21873964"
	source := &fakeSource{
		urls:     []string{url},
		pages:    map[string]string{url: "<html>captcha</html>"},
		pageErrs: map[string]error{url: &fetch.BlockedError{URL: url, Len: 21}},
	}
	store := &fakeStore{seen: map[string]bool{}}
	notifier := &fakeNotifier{}

	w := newWatcherForTest(source, store, notifier)
	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if len(notifier.msgs) != 1 || !strings.Contains(notifier.msgs[0], "HTML bloqué") {
		t.Fatalf("notifications = %v, want a blocked-page warning", notifier.msgs)
	}
	if len(store.marked) != 0 {
		t.Fatalf("blocked listing must stay unmarked, got %v", store.marked)
	}
}

func TestSweepDiscoveryFailureAborts(t *testing.T) {
	source := &fakeSource{discoverErr: errors.New("search fetch: status 403")}
	w := newWatcherForTest(source, &fakeStore{seen: map[string]bool{}}, &fakeNotifier{})
	if err := w.Sweep(context.Background()); err == nil {
		t.Fatalf("expected a discovery error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	source := &fakeSource{}
	w := newWatcherForTest(source, &fakeStore{seen: map[string]bool{}}, &fakeNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestListingKey(t *testing.T) {
	if got := listingKey("https://www.centris.ca/fr/duplex~a-vendre~montreal/21873964?uc=1"); got != "21873964" {
		t.Fatalf("listingKey = %q", got)
	}
	if got := listingKey("https://example.com/no-id"); got != "https://example.com/no-id" {
		t.Fatalf("listingKey fallback = %q", got)
	}
}
