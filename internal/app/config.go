package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"bullionsite/internal/pricing"
)

// Config contains runtime configuration derived from environment variables.
type Config struct {
	Port                 string        `envconfig:"PORT" default:"8080"`
	Site                 string        `envconfig:"SITE" default:"american-eagle"`
	PriceAPIURL          string        `envconfig:"PRICE_API_URL" default:"https://api.monex.com/api/v2/Metals/spot/summary"`
	PriceTimeout         time.Duration `envconfig:"PRICE_TIMEOUT" default:"5s"`
	PriceRateLimit       float64       `envconfig:"PRICE_RATE_LIMIT" default:"5"`
	PriceBurst           int           `envconfig:"PRICE_BURST" default:"10"`
	PriceRateWait        time.Duration `envconfig:"PRICE_RATE_WAIT" default:"250ms"`
	PriceBreakerFailures uint32        `envconfig:"PRICE_BREAKER_FAILURES" default:"3"`
	PriceBreakerCooldown time.Duration `envconfig:"PRICE_BREAKER_COOLDOWN" default:"30s"`
	LogLevel             string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat            string        `envconfig:"LOG_FORMAT" default:"json"`
	MetricsEnabled       bool          `envconfig:"METRICS_ENABLED" default:"true"`
}

// LoadConfig populates Config from environment variables, applying reasonable
// defaults. When envFile is set it is loaded first; variables already present
// in the environment win. A missing default ".env" is not an error.
func LoadConfig(envFile string) (Config, error) {
	var cfg Config

	if err := loadEnvFile(envFile); err != nil {
		return cfg, err
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("process environment: %w", err)
	}

	normalized, err := normalizePriceURL(cfg.PriceAPIURL)
	if err != nil {
		return cfg, err
	}
	cfg.PriceAPIURL = normalized

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.PriceTimeout <= 0 {
		return fmt.Errorf("PRICE_TIMEOUT must be positive, got %s", c.PriceTimeout)
	}
	if c.PriceRateLimit < 0 {
		return fmt.Errorf("PRICE_RATE_LIMIT must not be negative, got %v", c.PriceRateLimit)
	}
	if c.PriceRateWait < 0 {
		return fmt.Errorf("PRICE_RATE_WAIT must not be negative, got %s", c.PriceRateWait)
	}
	if c.PriceBreakerCooldown < 0 {
		return fmt.Errorf("PRICE_BREAKER_COOLDOWN must not be negative, got %s", c.PriceBreakerCooldown)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// normalizePriceURL validates the pricing endpoint and strips any query
// string, since the client appends ?metals= itself.
func normalizePriceURL(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return pricing.DefaultBaseURL, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("parse price api url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported price api scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("missing host in price api url")
	}

	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
