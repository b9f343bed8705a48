package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backends accepted for CLEARWAY_BACKEND.
const (
	BackendLocal     = "local"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

type Config struct {
	DataDir string `env:"DATA_DIR"`
	DBPath  string `env:"DB_PATH"`
	Debug   bool   `env:"DEBUG"`

	Backend     string `env:"BACKEND" envDefault:"local"`
	PostgresURL string `env:"POSTGRES_URL"`

	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseUserEmail       string `env:"FIREBASE_USER_EMAIL"`

	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	AmountStep  bool `env:"AMOUNT_STEP" envDefault:"true"`
	ChartWindow int  `env:"CHART_WINDOW" envDefault:"7"`

	HTTPAddr  string  `env:"HTTP_ADDR" envDefault:"127.0.0.1:8089"`
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"5"`
	RateBurst int     `env:"RATE_BURST" envDefault:"30"`
}

// Load reads an optional .env file and then CLEARWAY_* environment variables.
func Load() (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()
	return parse()
}

func parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "CLEARWAY_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.OpenAIKey == "" {
		cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DataDir = dir
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "clearway.db")
	}
	if cfg.ChartWindow < 1 {
		cfg.ChartWindow = 7
	}
	return cfg, nil
}

// Validate checks backend settings. Call it after command-line overrides.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
	case BackendPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("CLEARWAY_POSTGRES_URL is required for the postgres backend")
		}
	case BackendFirestore:
		if c.FirebaseProjectID == "" || c.FirebaseUserEmail == "" {
			return fmt.Errorf("CLEARWAY_FIREBASE_PROJECT_ID and CLEARWAY_FIREBASE_USER_EMAIL are required for the firestore backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// DefaultDataDir returns ~/.config/clearway
func DefaultDataDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "clearway"), nil
}
