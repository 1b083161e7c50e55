package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the runtime settings for one pipeline run, populated from
// environment variables. Per-country data (stations, thresholds, mappings)
// lives in the Registry, not here.
type Config struct {
	CountryCode  string
	LeadTime     int // forecast lead time selected for output, days
	RegistryPath string

	InputDir     string
	GridInputDir string
	OutputDir    string

	FTPHost     string
	FTPUser     string
	FTPPassword string
	FTPTimeout  time.Duration

	FetchDeadline      time.Duration
	FetchRetryInterval time.Duration

	LogLevel  string
	LogFormat string

	// MetricsAddr enables the health/metrics listener when non-empty.
	MetricsAddr string

	// KafkaBrokers enables the trigger-decision publisher when non-empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset. Missing required keys are fatal.
func Load() (*Config, error) {
	leadTime, err := parseIntEnv("LEAD_TIME", 7)
	if err != nil {
		return nil, err
	}

	ftpTimeout, err := parseDurationEnv("FTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	fetchDeadline, err := parseDurationEnv("FETCH_DEADLINE", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	retryInterval, err := parseDurationEnv("FETCH_RETRY_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CountryCode:  strings.ToUpper(os.Getenv("COUNTRY_CODE")),
		LeadTime:     leadTime,
		RegistryPath: envOrDefault("REGISTRY_PATH", "config/countries.yaml"),

		InputDir:     envOrDefault("INPUT_DIR", "data/input/glofas"),
		GridInputDir: envOrDefault("GRID_INPUT_DIR", "data/input/glofasgrid"),
		OutputDir:    envOrDefault("OUTPUT_DIR", "data/output"),

		FTPHost:     os.Getenv("GLOFAS_FTP_HOST"),
		FTPUser:     os.Getenv("GLOFAS_FTP_USER"),
		FTPPassword: os.Getenv("GLOFAS_FTP_PASSWORD"),
		FTPTimeout:  ftpTimeout,

		FetchDeadline:      fetchDeadline,
		FetchRetryInterval: retryInterval,

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		MetricsAddr: os.Getenv("METRICS_ADDR"),

		KafkaBrokers: parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "flood-trigger-decisions"),
	}

	if cfg.CountryCode == "" {
		return nil, errors.New("COUNTRY_CODE is required")
	}
	if cfg.LeadTime < 1 || cfg.LeadTime > 7 {
		return nil, fmt.Errorf("LEAD_TIME must be between 1 and 7, got %d", cfg.LeadTime)
	}

	return cfg, nil
}

// LeadTimeLabel is the "<n>-day" label embedded in output artifact names.
func (c *Config) LeadTimeLabel() string {
	return fmt.Sprintf("%d-day", c.LeadTime)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
