package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.Analyze.PriceCeiling != 15_000_000 {
		t.Fatalf("price ceiling = %d", cfg.Analyze.PriceCeiling)
	}
	if cfg.Finance.MaintenanceFixed != 610 {
		t.Fatalf("maintenance = %f", cfg.Finance.MaintenanceFixed)
	}
	if cfg.Watcher.RequestInterval.Seconds() != 40 {
		t.Fatalf("request interval = %s", cfg.Watcher.RequestInterval)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	content := `
analyze:
  min_listing_score: 12
finance:
  vacancy_rate: 0.05
  interest_rate: 0.055
watcher:
  full_scan_interval: 10m
notify:
  discord_webhook_url: "https://discord.example/webhook"
`
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Analyze.MinListingScore != 12 {
		t.Fatalf("min listing score = %d", cfg.Analyze.MinListingScore)
	}
	if got := cfg.FinanceAssumptions(); got.VacancyRate != 0.05 || got.InterestRate != 0.055 {
		t.Fatalf("assumptions = %+v", got)
	}
	// untouched values keep defaults
	if cfg.Finance.LoanToValue != 0.80 {
		t.Fatalf("loan to value = %f", cfg.Finance.LoanToValue)
	}
	if got := cfg.AnalyzeSettings(); got.MinListingScore != 12 || got.AnchorScanLines != 500 {
		t.Fatalf("analyze settings = %+v", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	cfg.Finance.VacancyRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected vacancy rate rejection")
	}

	cfg, _ = Load("")
	cfg.Notify.TelegramBotToken = "token-without-chat"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected telegram pairing rejection")
	}

	cfg, _ = Load("")
	cfg.Analyze.PriceCeiling = 1000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected ceiling/floor ordering rejection")
	}
}
