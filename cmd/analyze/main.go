package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/plexwatch/plexwatch/internal/analyze"
	"github.com/plexwatch/plexwatch/internal/config"
	"github.com/plexwatch/plexwatch/internal/fetch"
	"github.com/plexwatch/plexwatch/internal/finance"
	"github.com/plexwatch/plexwatch/internal/llmextract"
	"github.com/plexwatch/plexwatch/internal/report"
)

// analyze runs the pipeline once over a saved page or a live URL and
// prints the report, for inspecting a single listing without the
// watcher loop.
func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	filePath := flag.String("file", "", "path to a saved listing page; \"-\" reads stdin")
	url := flag.String("url", "", "listing URL to fetch and analyze")
	asJSON := flag.Bool("json", false, "print the full report as JSON instead of markdown")
	withLLM := flag.Bool("llm", false, "also print LLM-suggested fields (requires ANTHROPIC_API_KEY)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if (*filePath == "") == (*url == "") {
		log.Fatal("exactly one of -file or -url is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	html, err := loadPage(ctx, cfg, *filePath, *url)
	if err != nil {
		log.Fatal(err)
	}

	rep := analyze.NewAnalyzer(cfg.AnalyzeSettings()).Analyze(html, *url)
	out := finance.Compute(finance.FromReport(rep, cfg.FinanceAssumptions()))
	rep.Metrics = out.ListingMetrics()

	analysis := report.NewAnalysis(*url, rep, out)

	var suggestions *llmextract.Fields
	if *withLLM {
		fields, err := llmSuggestions(ctx, html)
		if err != nil {
			log.Printf("llm suggestions unavailable: %v", err)
		} else {
			suggestions = &fields
		}
	}

	if *asJSON {
		payload := map[string]any{
			"run_id":  analysis.RunID,
			"report":  rep,
			"finance": out,
		}
		if suggestions != nil {
			payload["llm_suggestions"] = suggestions
		}
		blob, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(blob))
		return
	}
	fmt.Println(report.BuildMarkdown(analysis))
	if suggestions != nil {
		blob, _ := json.MarshalIndent(suggestions, "", "  ")
		fmt.Printf("\nSuggestions LLM (non vérifiées, hors rapport):\n%s\n", blob)
	}
}

// llmSuggestions runs the advisory extractor over the page's rendered
// text. The output is printed next to the report, never merged into it.
func llmSuggestions(ctx context.Context, html string) (llmextract.Fields, error) {
	caller, err := llmextract.NewAnthropicCallerFromEnv()
	if err != nil {
		return llmextract.Fields{}, err
	}
	text := strings.Join(analyze.NewDocument(html).TextLines(), "\n")
	return llmextract.NewExtractor(caller).Extract(ctx, text)
}

func loadPage(ctx context.Context, cfg *config.Config, filePath, url string) (string, error) {
	if filePath == "-" {
		blob, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(blob), nil
	}
	if filePath != "" {
		blob, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(blob), nil
	}

	html, err := fetch.NewClient(cfg.FetchSettings()).Listing(ctx, url)
	var blocked *fetch.BlockedError
	if errors.As(err, &blocked) {
		log.Printf("warning: %v (analyzing the partial page)", blocked)
		return html, nil
	}
	return html, err
}
