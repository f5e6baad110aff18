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
	"github.com/plexwatch/plexwatch/internal/notify"
	"github.com/plexwatch/plexwatch/internal/seen"
	"github.com/plexwatch/plexwatch/internal/watcher"
)

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

	notifier, err := buildNotifier(cfg)
	if err != nil {
		log.Fatal(err)
	}

	w := watcher.New(
		watcher.Config{
			RequestInterval:  cfg.Watcher.RequestInterval,
			FullScanInterval: cfg.Watcher.FullScanInterval,
		},
		fetch.NewClient(cfg.FetchSettings()),
		store,
		notifier,
		analyze.NewAnalyzer(cfg.AnalyzeSettings()),
		cfg.FinanceAssumptions(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	count, _ := store.Count()
	log.Printf("starting plexwatch (analyzer=%s, seen=%d, scan every %s)",
		analyze.Version, count, cfg.Watcher.FullScanInterval)
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal(err)
	}
}

func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	var channels notify.Multi
	if cfg.Notify.DiscordWebhookURL != "" {
		channels = append(channels, notify.NewDiscord(cfg.Notify.DiscordWebhookURL))
	}
	if cfg.Notify.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.Notify.TelegramBotToken, cfg.Notify.TelegramChatID)
		if err != nil {
			return nil, err
		}
		channels = append(channels, tg)
	}
	if len(channels) == 0 {
		log.Printf("no notification channel configured, summaries go to the log only")
		return logNotifier{}, nil
	}
	return channels, nil
}

type logNotifier struct{}

func (logNotifier) Notify(_ context.Context, text string) error {
	log.Printf("notification:\n%s", text)
	return nil
}
