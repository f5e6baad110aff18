package watcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/plexwatch/plexwatch/internal/analyze"
	"github.com/plexwatch/plexwatch/internal/fetch"
	"github.com/plexwatch/plexwatch/internal/finance"
	"github.com/plexwatch/plexwatch/internal/notify"
	"github.com/plexwatch/plexwatch/internal/report"
)

// Config carries the loop cadence. RequestInterval spaces listing
// fetches inside one sweep; FullScanInterval spaces the sweeps.
type Config struct {
	RequestInterval  time.Duration
	FullScanInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestInterval:  40 * time.Second,
		FullScanInterval: 5 * time.Minute,
	}
}

// Source discovers listing URLs and fetches their pages. Satisfied by
// *fetch.Client.
type Source interface {
	DiscoverListings(ctx context.Context) ([]string, error)
	Listing(ctx context.Context, url string) (string, error)
}

// SeenStore remembers which listings were already reported. Satisfied
// by *seen.Store.
type SeenStore interface {
	IsSeen(listingID string) (bool, error)
	MarkSeen(listingID, url string) error
}

// Watcher runs the continuous scan loop: discover listings, skip the
// ones already reported, analyze the rest, notify, and mark as seen.
// Per-listing failures are logged and skipped; the loop itself only
// stops on context cancellation.
type Watcher struct {
	cfg         Config
	source      Source
	store       SeenStore
	notifier    notify.Notifier
	analyzer    *analyze.Analyzer
	assumptions finance.Assumptions

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config, source Source, store SeenStore, notifier notify.Notifier, analyzer *analyze.Analyzer, assumptions finance.Assumptions) *Watcher {
	return &Watcher{
		cfg:         cfg,
		source:      source,
		store:       store,
		notifier:    notifier,
		analyzer:    analyzer,
		assumptions: assumptions,
		sleep:       sleepCtx,
	}
}

// Run sweeps until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		if err := w.Sweep(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("watcher sweep failed: %v", err)
		}
		if err := w.sleep(ctx, w.cfg.FullScanInterval); err != nil {
			return err
		}
	}
}

// Sweep runs one pass over the search results. New listings are
// analyzed and reported; a discovery failure aborts the sweep, a
// per-listing failure does not.
func (w *Watcher) Sweep(ctx context.Context) error {
	urls, err := w.source.DiscoverListings(ctx)
	if err != nil {
		return fmt.Errorf("discover listings: %w", err)
	}
	log.Printf("watcher sweep: %d listings on search page", len(urls))

	fetched := false
	for _, url := range urls {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		id := listingKey(url)
		seen, err := w.store.IsSeen(id)
		if err != nil {
			log.Printf("watcher seen lookup %s: %v", id, err)
			continue
		}
		if seen {
			continue
		}

		// space the page fetches; the first new listing goes out
		// immediately
		if fetched {
			if err := w.sleep(ctx, w.cfg.RequestInterval); err != nil {
				return err
			}
		}
		fetched = true

		if err := w.processListing(ctx, id, url); err != nil {
			log.Printf("watcher listing %s: %v", id, err)
		}
	}
	return nil
}

func (w *Watcher) processListing(ctx context.Context, id, url string) error {
	html, err := w.source.Listing(ctx, url)
	var blocked *fetch.BlockedError
	if errors.As(err, &blocked) {
		// leave unmarked so the next sweep retries
		w.notify(ctx, fmt.Sprintf("⚠️ HTML bloqué/incomplet (%d octets)\n%s", blocked.Len, url))
		return err
	}
	if err != nil {
		return err
	}

	rep := w.analyzer.Analyze(html, url)
	out := finance.Compute(finance.FromReport(rep, w.assumptions))
	rep.Metrics = out.ListingMetrics()

	analysis := report.NewAnalysis(url, rep, out)
	w.notify(ctx, report.Summary(analysis))

	if err := w.store.MarkSeen(id, url); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

func (w *Watcher) notify(ctx context.Context, text string) {
	if w.notifier == nil {
		return
	}
	if err := w.notifier.Notify(ctx, text); err != nil {
		log.Printf("watcher notify: %v", err)
	}
}

// listingKey is the dedupe key for a listing URL: the numeric listing
// id when the URL carries one, the URL itself otherwise.
func listingKey(url string) string {
	if id := analyze.ListingIDFromURL(url); id != "" {
		return id
	}
	return strings.TrimSpace(url)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
