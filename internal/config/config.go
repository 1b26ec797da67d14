// Package config loads the gridtrader YAML configuration and applies
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the gridtrader service.
type Config struct {
	Server   Server   `yaml:"server"`
	Storage  Storage  `yaml:"storage"`
	Provider Provider `yaml:"provider"`
	Alpaca   Alpaca   `yaml:"alpaca"`
	Schedule Schedule `yaml:"schedule"`
	Backtest Backtest `yaml:"backtest"`
	Logging  Logging  `yaml:"logging"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Provider selects and configures the price series source.
type Provider struct {
	// Kind is one of "yahoo", "alpaca", or "synthetic".
	Kind string `yaml:"kind"`
	// Cache enables the on-disk Parquet bar cache in front of the provider.
	Cache bool `yaml:"cache"`
	// Proxy is an optional HTTP proxy URL for outbound requests.
	Proxy string `yaml:"proxy"`
	// SyntheticSeed seeds the synthetic provider.
	SyntheticSeed int64 `yaml:"synthetic_seed"`
}

// Alpaca holds credentials and endpoints for the Alpaca market data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Schedule configures the background cache refresh job.
type Schedule struct {
	// RefreshCron is a cron expression with seconds. Empty disables the job.
	RefreshCron string `yaml:"refresh_cron"`
	// RefreshPeriod is the lookback fetched on each refresh, e.g. "1mo".
	RefreshPeriod string `yaml:"refresh_period"`
	// RateLimitPerMin caps upstream fetches during a refresh sweep.
	RateLimitPerMin int `yaml:"rate_limit_per_min"`
}

// Backtest configures simulation behaviour.
type Backtest struct {
	// MultiLevelCrossing allows one day to trade through several grid levels.
	MultiLevelCrossing bool `yaml:"multi_level_crossing"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, applies defaults
// and environment variable overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with sensible defaults for local development.
func Default() *Config {
	return &Config{
		Server: Server{
			Host: "0.0.0.0",
			Port: 5001,
		},
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/gridtrader.db",
		},
		Provider: Provider{
			Kind:          "yahoo",
			Cache:         true,
			SyntheticSeed: 42,
		},
		Schedule: Schedule{
			RefreshPeriod:   "1mo",
			RateLimitPerMin: 60,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for internally inconsistent or impossible
// values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	switch c.Provider.Kind {
	case "yahoo", "alpaca", "synthetic":
	default:
		return fmt.Errorf("provider.kind %q is not one of yahoo, alpaca, synthetic", c.Provider.Kind)
	}
	if c.Provider.Kind == "alpaca" && (c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "") {
		return fmt.Errorf("provider.kind is alpaca but alpaca credentials are not set")
	}
	if c.Schedule.RateLimitPerMin < 0 {
		return fmt.Errorf("schedule.rate_limit_per_min must not be negative")
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("PRICE_PROVIDER"); v != "" {
		cfg.Provider.Kind = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" && cfg.Provider.Proxy == "" {
		cfg.Provider.Proxy = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (highest priority — canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
