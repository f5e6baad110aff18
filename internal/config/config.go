package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/plexwatch/plexwatch/internal/analyze"
	"github.com/plexwatch/plexwatch/internal/fetch"
	"github.com/plexwatch/plexwatch/internal/finance"
)

// Config is the complete application configuration: pipeline tunables,
// financial assumptions, watcher timing and notification channels.
type Config struct {
	Analyze AnalyzeConfig `mapstructure:"analyze"`
	Finance FinanceConfig `mapstructure:"finance"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Watcher WatcherConfig `mapstructure:"watcher"`
	Server  ServerConfig  `mapstructure:"server"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Storage StorageConfig `mapstructure:"storage"`
}

type AnalyzeConfig struct {
	MinStructuredPrice     int64   `mapstructure:"min_structured_price"`
	PriceCeiling           int64   `mapstructure:"price_ceiling"`
	MaxGrossRentMultiplier float64 `mapstructure:"max_gross_rent_multiplier"`
	MinListingScore        int     `mapstructure:"min_listing_score"`
	RevenueCorrectionBound int64   `mapstructure:"revenue_correction_bound"`
	MinPayloadBytes        int     `mapstructure:"min_payload_bytes"`
	AnchorScanLines        int     `mapstructure:"anchor_scan_lines"`
	AnchorWindowLines      int     `mapstructure:"anchor_window_lines"`
	PrefixFallbackLines    int     `mapstructure:"prefix_fallback_lines"`
}

type FinanceConfig struct {
	VacancyRate       float64 `mapstructure:"vacancy_rate"`
	SalaryRate        float64 `mapstructure:"salary_rate"`
	MaintenanceFixed  float64 `mapstructure:"maintenance_fixed"`
	ConciergeFixed    float64 `mapstructure:"concierge_fixed"`
	LoanToValue       float64 `mapstructure:"loan_to_value"`
	InterestRate      float64 `mapstructure:"interest_rate"`
	AmortizationYears int     `mapstructure:"amortization_years"`
	TargetDSCR        float64 `mapstructure:"target_dscr"`
	OfferCapRate      float64 `mapstructure:"offer_cap_rate"`
}

type FetchConfig struct {
	SearchURL    string        `mapstructure:"search_url"`
	BaseURL      string        `mapstructure:"base_url"`
	MinHTMLBytes int           `mapstructure:"min_html_bytes"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type WatcherConfig struct {
	RequestInterval  time.Duration `mapstructure:"request_interval"`
	FullScanInterval time.Duration `mapstructure:"full_scan_interval"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type NotifyConfig struct {
	DiscordWebhookURL string `mapstructure:"discord_webhook_url"`
	TelegramBotToken  string `mapstructure:"telegram_bot_token"`
	TelegramChatID    string `mapstructure:"telegram_chat_id"`
}

type StorageConfig struct {
	SeenDBPath string `mapstructure:"seen_db_path"`
}

// Load reads configuration from an optional file plus PLEXWATCH_*
// environment overrides. An empty path loads defaults and environment
// only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PLEXWATCH")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	ac := analyze.DefaultConfig()
	v.SetDefault("analyze.min_structured_price", ac.MinStructuredPrice)
	v.SetDefault("analyze.price_ceiling", ac.PriceCeiling)
	v.SetDefault("analyze.max_gross_rent_multiplier", ac.MaxGrossRentMultiplier)
	v.SetDefault("analyze.min_listing_score", ac.MinListingScore)
	v.SetDefault("analyze.revenue_correction_bound", ac.RevenueCorrectionBound)
	v.SetDefault("analyze.min_payload_bytes", ac.MinPayloadBytes)
	v.SetDefault("analyze.anchor_scan_lines", ac.AnchorScanLines)
	v.SetDefault("analyze.anchor_window_lines", ac.AnchorWindowLines)
	v.SetDefault("analyze.prefix_fallback_lines", ac.PrefixFallbackLines)

	fa := finance.DefaultAssumptions()
	v.SetDefault("finance.vacancy_rate", fa.VacancyRate)
	v.SetDefault("finance.salary_rate", fa.SalaryRate)
	v.SetDefault("finance.maintenance_fixed", fa.MaintenanceFixed)
	v.SetDefault("finance.concierge_fixed", fa.ConciergeFixed)
	v.SetDefault("finance.loan_to_value", fa.LoanToValue)
	v.SetDefault("finance.interest_rate", fa.InterestRate)
	v.SetDefault("finance.amortization_years", fa.AmortizationYears)
	v.SetDefault("finance.target_dscr", fa.TargetDSCR)
	v.SetDefault("finance.offer_cap_rate", fa.OfferCapRate)

	fc := fetch.DefaultConfig()
	v.SetDefault("fetch.search_url", fc.SearchURL)
	v.SetDefault("fetch.base_url", fc.BaseURL)
	v.SetDefault("fetch.min_html_bytes", fc.MinHTMLBytes)
	v.SetDefault("fetch.timeout", "30s")

	v.SetDefault("watcher.request_interval", "40s")
	v.SetDefault("watcher.full_scan_interval", "5m")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("storage.seen_db_path", "./data/seen.db")
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.Analyze.PriceCeiling <= c.Analyze.MinStructuredPrice {
		return fmt.Errorf("analyze.price_ceiling must exceed analyze.min_structured_price")
	}
	if c.Analyze.MaxGrossRentMultiplier <= 0 {
		return fmt.Errorf("analyze.max_gross_rent_multiplier must be positive")
	}
	if c.Analyze.MinListingScore < 0 {
		return fmt.Errorf("analyze.min_listing_score must not be negative")
	}
	if c.Analyze.AnchorScanLines < 1 || c.Analyze.AnchorWindowLines < 1 || c.Analyze.PrefixFallbackLines < 1 {
		return fmt.Errorf("analyze scan line bounds must be positive")
	}

	if c.Finance.VacancyRate < 0 || c.Finance.VacancyRate > 1 {
		return fmt.Errorf("finance.vacancy_rate must be between 0 and 1")
	}
	if c.Finance.LoanToValue < 0 || c.Finance.LoanToValue > 1 {
		return fmt.Errorf("finance.loan_to_value must be between 0 and 1")
	}
	if c.Finance.AmortizationYears < 1 {
		return fmt.Errorf("finance.amortization_years must be at least 1")
	}
	if c.Finance.OfferCapRate <= 0 {
		return fmt.Errorf("finance.offer_cap_rate must be positive")
	}

	if c.Fetch.SearchURL == "" || c.Fetch.BaseURL == "" {
		return fmt.Errorf("fetch.search_url and fetch.base_url are required")
	}
	if c.Watcher.RequestInterval < time.Second {
		return fmt.Errorf("watcher.request_interval must be at least 1s")
	}
	if c.Watcher.FullScanInterval < time.Minute {
		return fmt.Errorf("watcher.full_scan_interval must be at least 1 minute")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Storage.SeenDBPath == "" {
		return fmt.Errorf("storage.seen_db_path is required")
	}
	if (c.Notify.TelegramBotToken == "") != (c.Notify.TelegramChatID == "") {
		return fmt.Errorf("notify.telegram_bot_token and notify.telegram_chat_id must be set together")
	}
	return nil
}

// AnalyzeSettings converts the loaded values into pipeline
// configuration.
func (c *Config) AnalyzeSettings() analyze.Config {
	ac := analyze.DefaultConfig()
	ac.MinStructuredPrice = c.Analyze.MinStructuredPrice
	ac.PriceCeiling = c.Analyze.PriceCeiling
	ac.MaxGrossRentMultiplier = c.Analyze.MaxGrossRentMultiplier
	ac.MinListingScore = c.Analyze.MinListingScore
	ac.RevenueCorrectionBound = c.Analyze.RevenueCorrectionBound
	ac.MinPayloadBytes = c.Analyze.MinPayloadBytes
	ac.AnchorScanLines = c.Analyze.AnchorScanLines
	ac.AnchorWindowLines = c.Analyze.AnchorWindowLines
	ac.PrefixFallbackLines = c.Analyze.PrefixFallbackLines
	return ac
}

func (c *Config) FinanceAssumptions() finance.Assumptions {
	fa := finance.DefaultAssumptions()
	fa.VacancyRate = c.Finance.VacancyRate
	fa.SalaryRate = c.Finance.SalaryRate
	fa.MaintenanceFixed = c.Finance.MaintenanceFixed
	fa.ConciergeFixed = c.Finance.ConciergeFixed
	fa.LoanToValue = c.Finance.LoanToValue
	fa.InterestRate = c.Finance.InterestRate
	fa.AmortizationYears = c.Finance.AmortizationYears
	fa.TargetDSCR = c.Finance.TargetDSCR
	fa.OfferCapRate = c.Finance.OfferCapRate
	return fa
}

func (c *Config) FetchSettings() fetch.Config {
	return fetch.Config{
		SearchURL:    c.Fetch.SearchURL,
		BaseURL:      c.Fetch.BaseURL,
		MinHTMLBytes: c.Fetch.MinHTMLBytes,
		Timeout:      c.Fetch.Timeout,
	}
}
