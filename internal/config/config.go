package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	OCR      OCRConfig      `toml:"ocr"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Database DatabaseConfig `toml:"database"`
	Observer ObserverConfig `toml:"observer"`
}

type OCRConfig struct {
	Provider  string   `toml:"provider"` // "vision" or "tesseract"
	APIKey    string   `toml:"api_key"`
	Languages []string `toml:"languages"`
	MaxRPM    int      `toml:"max_rpm"` // 0 disables rate limiting
}

type PipelineConfig struct {
	MaxRetries     int  `toml:"max_retries"`
	RetryDelayMs   int  `toml:"retry_delay_ms"`
	MaxConcurrent  int  `toml:"max_concurrent"`
	PreferFullText bool `toml:"prefer_full_text"`
}

type DatabaseConfig struct {
	Driver      string `toml:"driver"` // "sqlite", "postgres", or "" (no archive)
	Path        string `toml:"path"`
	PostgresURL string `toml:"postgres_url"`
}

type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		OCR: OCRConfig{Provider: "vision"},
		Pipeline: PipelineConfig{
			MaxRetries:     3,
			RetryDelayMs:   1000,
			PreferFullText: true,
		},
		Database: DatabaseConfig{Path: "papyrus.db"},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "papyrus.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("PAPYRUS_OCR_PROVIDER"); v != "" {
		cfg.OCR.Provider = v
	}
	if v := os.Getenv("PAPYRUS_OCR_API_KEY"); v != "" {
		cfg.OCR.APIKey = v
	}
	if v := os.Getenv("PAPYRUS_POSTGRES_URL"); v != "" {
		cfg.Database.PostgresURL = v
	}
	if os.Getenv("PAPYRUS_OBSERVER_ENABLED") == "true" || os.Getenv("PAPYRUS_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	// Fallbacks
	if cfg.Database.Driver == "" && cfg.Database.PostgresURL != "" {
		cfg.Database.Driver = "postgres"
	}

	return cfg
}
