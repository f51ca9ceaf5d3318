package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendGoogle = "google"
	BackendMemory = "memory"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8081"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-in-production"`

	SpreadsheetID         string `env:"SPREADSHEET_ID"`
	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`
	GoogleCredentialsJSON string `env:"GOOGLE_CREDENTIALS_JSON"`
	SheetsBackend         string `env:"SHEETS_BACKEND" envDefault:"google"`
	MovementsTab          string `env:"MOVEMENTS_TAB" envDefault:"STOCK_MOVEMENTS"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	Log  LogConfig  `envPrefix:"LOG_"`
	Seed SeedConfig `envPrefix:"SEED_"`
}

// SeedConfig names the locations and owner login created by cmd/seed, and
// by the server at startup when it runs on the memory backend.
type SeedConfig struct {
	Locations []string `env:"LOCATIONS" envSeparator:","`
	Username  string   `env:"USERNAME"`
	PIN       string   `env:"PIN"`
}

// LogConfig controls the logger and optional rotated log file.
type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"text"`
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"28"`
}

// Load reads ENV_FILE (default .env) into the environment when it exists,
// then parses and validates the config. Variables already set win over the
// file.
func Load() (*Config, error) {
	file := os.Getenv("ENV_FILE")
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", file, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.SheetsBackend = strings.ToLower(strings.TrimSpace(cfg.SheetsBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend settings.
func (c *Config) Validate() error {
	switch c.SheetsBackend {
	case BackendMemory:
		return nil
	case BackendGoogle:
		if c.SpreadsheetID == "" {
			return errors.New("SPREADSHEET_ID is required for the google backend")
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			return errors.New("GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON is required for the google backend")
		}
		return nil
	default:
		return fmt.Errorf("unknown SHEETS_BACKEND %q", c.SheetsBackend)
	}
}

// Credentials returns the service account JSON, reading the file when no
// inline JSON is set.
func (c *Config) Credentials() ([]byte, error) {
	if c.GoogleCredentialsJSON != "" {
		return []byte(c.GoogleCredentialsJSON), nil
	}
	b, err := os.ReadFile(c.GoogleCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return b, nil
}
