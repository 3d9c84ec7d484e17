package config

import (
	"log"
	"os"
	"time"
)

const (
	defaultDBPath           = "./dev.db"
	defaultPort             = "8080"
	defaultEnv              = "dev"
	defaultSnapshotDebounce = 750 * time.Millisecond
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env         string
	Port        string
	DBPath      string
	DatabaseURL string
	CatalogPath string

	// SnapshotDebounce is how long a job's financial snapshot waits for
	// further edits before it is written.
	SnapshotDebounce time.Duration
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Local development convenience; production injects real env vars.
	_ = loadDotEnv(".env")

	cfg := Config{
		Env:              os.Getenv("APP_ENV"),
		Port:             os.Getenv("PORT"),
		DBPath:           os.Getenv("DB_PATH"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		CatalogPath:      os.Getenv("CATALOG_PATH"),
		SnapshotDebounce: defaultSnapshotDebounce,
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if raw := os.Getenv("SNAPSHOT_DEBOUNCE"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			log.Printf("warning: invalid SNAPSHOT_DEBOUNCE %q, using %s", raw, defaultSnapshotDebounce)
		} else {
			cfg.SnapshotDebounce = d
		}
	}

	if !cfg.IsDev() && cfg.DatabaseURL == "" {
		log.Print("warning: DATABASE_URL is not set, falling back to sqlite")
	}

	return cfg
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

// UsePostgres reports whether jobs are stored in Postgres instead of SQLite.
func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}
