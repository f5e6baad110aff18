package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/plexwatch/plexwatch/internal/analyze"
	"github.com/plexwatch/plexwatch/internal/config"
	"github.com/plexwatch/plexwatch/internal/fetch"
	"github.com/plexwatch/plexwatch/internal/seen"
)

// mark-seen backfills the seen store with every listing currently on
// the search page, so a fresh deployment does not flood the channels
// with notifications for listings that were already on the market.
func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if dir := filepath.Dir(cfg.Storage.SeenDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create data dir %s: %v", dir, err)
		}
	}
	store, err := seen.Open(cfg.Storage.SeenDBPath)
	if err != nil {
		log.Fatalf("open seen store (%s): %v", cfg.Storage.SeenDBPath, err)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	urls, err := fetch.NewClient(cfg.FetchSettings()).DiscoverListings(ctx)
	if err != nil {
		log.Fatal(err)
	}

	marked := 0
	for _, url := range urls {
		id := analyze.ListingIDFromURL(url)
		if id == "" {
			id = url
		}
		if err := store.MarkSeen(id, url); err != nil {
			log.Printf("mark %s: %v", id, err)
			continue
		}
		marked++
	}
	total, _ := store.Count()
	log.Printf("marked %d listings as seen (%d total in store)", marked, total)
}
