package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/reactbank/reactbank/internal/currency"
)

// FileName is the config file looked up in the working directory.
const FileName = "reactbank.yaml"

// Config represents the top-level reactbank.yaml configuration. Every key
// can be overridden with its REACTBANK_* environment variable.
type Config struct {
	Currency     CurrencyConfig     `yaml:"currency"`
	Rates        RatesConfig        `yaml:"rates"`
	Transactions TransactionsConfig `yaml:"transactions"`
	Display      DisplayConfig      `yaml:"display"`
	Receipts     ReceiptsConfig     `yaml:"receipts"`
	Auth         AuthConfig         `yaml:"auth"`
	API          APIConfig          `yaml:"api"`
	Log          LogConfig          `yaml:"log"`
}

// CurrencyConfig picks the display currency at start-up.
type CurrencyConfig struct {
	Initial string `yaml:"initial" env:"REACTBANK_CURRENCY" env-default:"MYR"`
}

// RatesConfig points at the exchange rate endpoints.
type RatesConfig struct {
	PrimaryURL  string        `yaml:"primary_url" env:"REACTBANK_RATES_PRIMARY_URL" env-default:"https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest"`
	FallbackURL string        `yaml:"fallback_url" env:"REACTBANK_RATES_FALLBACK_URL" env-default:"https://latest.currency-api.pages.dev"`
	Timeout     time.Duration `yaml:"timeout" env:"REACTBANK_RATES_TIMEOUT" env-default:"15s"`
}

// TransactionsConfig selects the transaction list.
type TransactionsConfig struct {
	Source       string        `yaml:"source" env:"REACTBANK_TRANSACTIONS_SOURCE" env-default:"mock"` // "mock" or a CSV path
	RefreshDelay time.Duration `yaml:"refresh_delay" env:"REACTBANK_REFRESH_DELAY" env-default:"1s"`
}

// DisplayConfig controls number formatting.
type DisplayConfig struct {
	Locale string `yaml:"locale" env:"REACTBANK_LOCALE" env-default:"en-MY"`
}

// ReceiptsConfig controls where receipts are saved.
type ReceiptsConfig struct {
	Dir    string `yaml:"dir" env:"REACTBANK_RECEIPTS_DIR" env-default:"receipts"`
	Format string `yaml:"format" env:"REACTBANK_RECEIPTS_FORMAT" env-default:"text"`
}

// AuthConfig holds the login passcode. An empty hash means nobody is enrolled.
type AuthConfig struct {
	PasscodeHash string `yaml:"passcode_hash,omitempty" env:"REACTBANK_PASSCODE_HASH"`
}

// APIConfig configures `reactbank serve`.
type APIConfig struct {
	Addr string `yaml:"addr" env:"REACTBANK_API_ADDR" env-default:"127.0.0.1:8080"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level  string `yaml:"level" env:"REACTBANK_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"REACTBANK_LOG_FORMAT" env-default:"text"`
}

// Load reads a reactbank.yaml file from disk and applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default with
// environment overrides applied.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	cfg = Default()
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new install.
func Default() *Config {
	return &Config{
		Currency: CurrencyConfig{Initial: string(currency.Base)},
		Rates: RatesConfig{
			PrimaryURL:  "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest",
			FallbackURL: "https://latest.currency-api.pages.dev",
			Timeout:     15 * time.Second,
		},
		Transactions: TransactionsConfig{
			Source:       "mock",
			RefreshDelay: time.Second,
		},
		Display:  DisplayConfig{Locale: "en-MY"},
		Receipts: ReceiptsConfig{Dir: "receipts", Format: "text"},
		API:      APIConfig{Addr: "127.0.0.1:8080"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := currency.Parse(c.Currency.Initial); err != nil {
		errs = append(errs, fmt.Errorf("currency.initial: %w", err))
	}
	if c.Rates.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("rates.timeout: must be positive, got %s", c.Rates.Timeout))
	}
	if c.Transactions.RefreshDelay < 0 {
		errs = append(errs, fmt.Errorf("transactions.refresh_delay: must not be negative, got %s", c.Transactions.RefreshDelay))
	}
	if _, err := language.Parse(c.Display.Locale); err != nil {
		errs = append(errs, fmt.Errorf("display.locale: %w", err))
	}
	switch c.Receipts.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("receipts.format: unknown format %q", c.Receipts.Format))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// InitialCurrency returns the parsed Currency.Initial. Call Validate first.
func (c *Config) InitialCurrency() currency.Code {
	code, err := currency.Parse(c.Currency.Initial)
	if err != nil {
		return currency.Base
	}
	return code
}

// Resolve makes p absolute against root unless it already is.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
