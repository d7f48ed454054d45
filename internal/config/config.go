package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all report settings, populated from environment variables.
type Config struct {
	DataPath    string
	OutputPath  string
	TopFoods    int
	TopFatal    int
	PreviewRows int
	GeoSeed     *uint64 // nil leaves synthesized coordinates unseeded
	LogLevel    string
	LogFormat   string
	RunTimeout  time.Duration

	// Kafka report sink; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	// Mapbox state geocoding configuration.
	MapboxToken       string
	MapboxEnabled     bool
	MapboxTimeout     time.Duration
	MapboxMaxAttempts int

	// PushgatewayURL enables pushing run metrics when set.
	PushgatewayURL string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	topFoods, err := parsePositiveInt("TOP_FOODS", 5)
	if err != nil {
		return nil, err
	}
	topFatal, err := parsePositiveInt("TOP_FATAL", 5)
	if err != nil {
		return nil, err
	}
	previewRows, err := parseNonNegativeInt("PREVIEW_ROWS", 5)
	if err != nil {
		return nil, err
	}
	mapboxMaxAttempts, err := parsePositiveInt("MAPBOX_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}

	runTimeout, err := parseDuration("RUN_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	geoSeed, err := parseSeed()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		DataPath:    sharedcfg.EnvOrDefault("DATA_PATH", "outbreaks.csv"),
		OutputPath:  sharedcfg.EnvOrDefault("OUTPUT_PATH", "outbreak-report.json"),
		TopFoods:    topFoods,
		TopFatal:    topFatal,
		PreviewRows: previewRows,
		GeoSeed:     geoSeed,
		LogLevel:    sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		RunTimeout:  runTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "outbreak-reports"),

		MapboxToken:       mapboxToken,
		MapboxEnabled:     mapboxEnabled,
		MapboxTimeout:     mapboxTimeout,
		MapboxMaxAttempts: mapboxMaxAttempts,

		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
	}

	if strings.TrimSpace(cfg.DataPath) == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if strings.TrimSpace(cfg.OutputPath) == "-" {
		return nil, errors.New("OUTPUT_PATH must be a file: stdout carries the logs")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveInt(name string, def int) (int, error) {
	n, err := parseInt(name, def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return n, nil
}

func parseNonNegativeInt(name string, def int) (int, error) {
	n, err := parseInt(name, def)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", name)
	}
	return n, nil
}

func parseInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

func parseDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parseSeed() (*uint64, error) {
	s := os.Getenv("GEO_SEED")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEO_SEED: %w", err)
	}
	return &v, nil
}
