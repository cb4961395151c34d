// Package config loads runtime settings from the environment and the SDR roster from YAML.
package config

import (
	"call-blocks/models"
	"call-blocks/parser"
	"fmt"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// rosterRelPath is looked up under the XDG config directories.
const rosterRelPath = "callblocks/roster.yaml"

// Config holds all configuration for the application
type Config struct {
	LogLevel       string
	Timezone       string
	Location       *time.Location
	RosterPath     string
	Roster         models.Roster
	DefaultDataset string
	DefaultSDR     models.SDRID
	Columns        parser.Columns
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:       getEnv("CALLBLOCKS_LOG_LEVEL", "info"),
		Timezone:       getEnv("CALLBLOCKS_TIMEZONE", "Local"),
		RosterPath:     getEnv("CALLBLOCKS_ROSTER", ""),
		DefaultDataset: getEnv("CALLBLOCKS_DEFAULT_DATASET", ""),
		Columns: parser.Columns{
			Timestamp: getEnv("CALLBLOCKS_COL_TIMESTAMP", parser.DefaultColumns.Timestamp),
			Contact:   getEnv("CALLBLOCKS_COL_CONTACT", parser.DefaultColumns.Contact),
			Outcome:   getEnv("CALLBLOCKS_COL_OUTCOME", parser.DefaultColumns.Outcome),
			Note:      getEnv("CALLBLOCKS_COL_NOTE", parser.DefaultColumns.Note),
		},
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CALLBLOCKS_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.RosterPath == "" {
		if found, err := xdg.SearchConfigFile(rosterRelPath); err == nil {
			cfg.RosterPath = found
		}
	}
	if cfg.RosterPath != "" {
		roster, err := LoadRoster(cfg.RosterPath)
		if err != nil {
			return nil, err
		}
		cfg.Roster = roster
	} else {
		cfg.Roster = DefaultRoster()
	}

	cfg.DefaultSDR = models.SDRID(getEnv("CALLBLOCKS_DEFAULT_SDR", string(cfg.Roster[0].ID)))
	if !cfg.Roster.Has(cfg.DefaultSDR) {
		return nil, fmt.Errorf("invalid CALLBLOCKS_DEFAULT_SDR: %q is not in the roster", cfg.DefaultSDR)
	}

	return cfg, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
