package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/plexwatch/plexwatch/internal/analyze"
	"github.com/plexwatch/plexwatch/internal/config"
	"github.com/plexwatch/plexwatch/internal/fetch"
	"github.com/plexwatch/plexwatch/internal/httpapi"
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

	h := httpapi.NewServer(
		analyze.NewAnalyzer(cfg.AnalyzeSettings()),
		cfg.FinanceAssumptions(),
		fetch.NewClient(cfg.FetchSettings()),
	)

	log.Printf("plexwatch-server listening on %s (analyzer=%s)", cfg.Server.Addr, analyze.Version)
	if err := http.ListenAndServe(cfg.Server.Addr, h); err != nil {
		log.Fatal(err)
	}
}
