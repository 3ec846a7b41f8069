// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultDatabase    = "geoprofile.db"
	defaultMinInterval = 0.1
)

// Config holds the settings shared by the commands.
type Config struct {
	// Database is the SQLite file (GEOPROFILE_DB).
	Database string

	// MinInterval is the minimum layer band thickness in metres used when
	// converting soundings (GEOPROFILE_MIN_INTERVAL).
	MinInterval float64

	// Workers is the import worker count (GEOPROFILE_WORKERS).
	Workers int

	// SoilTypes is an optional YAML soil type catalogue (GEOPROFILE_SOILTYPES).
	SoilTypes string

	// LinearSearch selects the scanning nearest-profile finder instead of the
	// R-tree (GEOPROFILE_LINEAR_SEARCH).
	LinearSearch bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment win. A .env file that cannot be parsed is an error.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a variable lookup.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Database:    defaultDatabase,
		MinInterval: defaultMinInterval,
		Workers:     runtime.NumCPU(),
	}

	if v := strings.TrimSpace(getenv("GEOPROFILE_DB")); v != "" {
		cfg.Database = v
	}

	if v := strings.TrimSpace(getenv("GEOPROFILE_MIN_INTERVAL")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid GEOPROFILE_MIN_INTERVAL: %w", err)
		}
		if f <= 0 {
			return cfg, fmt.Errorf("invalid GEOPROFILE_MIN_INTERVAL: %v must be positive", f)
		}
		cfg.MinInterval = f
	}

	if v := strings.TrimSpace(getenv("GEOPROFILE_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid GEOPROFILE_WORKERS: %w", err)
		}
		if n < 1 {
			return cfg, fmt.Errorf("invalid GEOPROFILE_WORKERS: %d must be at least 1", n)
		}
		cfg.Workers = n
	}

	cfg.SoilTypes = strings.TrimSpace(getenv("GEOPROFILE_SOILTYPES"))

	if v := strings.TrimSpace(getenv("GEOPROFILE_LINEAR_SEARCH")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid GEOPROFILE_LINEAR_SEARCH: %w", err)
		}
		cfg.LinearSearch = b
	}

	return cfg, nil
}
