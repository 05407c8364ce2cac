package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/clim2parquet/internal/domain"
)

// Config holds all converter settings, populated from environment variables.
type Config struct {
	GADMVersion string
	LogLevel    string
	LogFormat   string

	// ReferenceTable is the path of the persisted reference table. Empty means
	// the table is rebuilt from the input directory on every run.
	ReferenceTable string

	ValidateCountryCodes bool
	ExtractCacheSize     int

	// MetricsFile receives a Prometheus text exposition after each run.
	MetricsFile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	validateCountries, err := parseBool("VALIDATE_COUNTRY_CODES", false)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		GADMVersion:          sharedcfg.EnvOrDefault("GADM_VERSION", domain.GADMVersion410),
		LogLevel:             strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ReferenceTable:       os.Getenv("REFERENCE_TABLE"),
		ValidateCountryCodes: validateCountries,
		ExtractCacheSize:     cacheSize,
		MetricsFile:          os.Getenv("METRICS_FILE"),
	}

	if err := domain.ValidateVersion(cfg.GADMVersion); err != nil {
		return nil, fmt.Errorf("invalid GADM_VERSION: %w", err)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, s)
	}
	return v, nil
}

func parseCacheSize() (int, error) {
	s := sharedcfg.EnvOrDefault("EXTRACT_CACHE_SIZE", "1024")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid EXTRACT_CACHE_SIZE: must be a positive integer")
	}
	return n, nil
}
