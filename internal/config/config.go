package config

import (
	"os"
	"strconv"

	"perifuse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Paths      PathConfig
	Extraction ExtractionConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional trait-store connection settings
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// PathConfig holds file system paths for batch runs
type PathConfig struct {
	InputFile     string
	ParameterFile string
	OutputFile    string
}

// ExtractionConfig holds trait-extraction settings
type ExtractionConfig struct {
	Prefix   string
	Sheet    string
	SkipRows int
	UnitRow  bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Paths: PathConfig{
			InputFile:     os.Getenv("INPUT_FILE"),
			ParameterFile: os.Getenv("PARAMETER_FILE"),
			OutputFile:    getEnv("OUTPUT_FILE", "traits.csv"),
		},
		Extraction: ExtractionConfig{
			Prefix: os.Getenv("TRAIT_PREFIX"),
			Sheet:  getEnv("INPUT_SHEET", "Sheet1"),
		},
	}
	cfg.Database.Enabled = cfg.Database.URL != ""

	skipRows, err := getEnvInt("INPUT_SKIP_ROWS", 0)
	if err != nil {
		return nil, errors.Wrap(err, "invalid INPUT_SKIP_ROWS")
	}
	cfg.Extraction.SkipRows = skipRows
	cfg.Extraction.UnitRow = getEnv("INPUT_UNIT_ROW", "false") == "true"

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
