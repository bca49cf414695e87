package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Open-data API client configuration.
	OpenDataBaseURL   string
	OpenDataTimeout   time.Duration
	OpenDataRateLimit float64 // requests per second
	OpenDataPageLimit int     // rows per upstream query

	// InsightYears are the report years fetched for the neighbourhood
	// comparison.
	InsightYears []int
}

const defaultBaseURL = "https://opendata.vancouver.ca/api/explore/v2.1"

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	openDataTimeout, err := parseDuration("OPENDATA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	rateLimit, err := parsePositiveFloat("OPENDATA_RATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}

	pageLimit, err := parsePositiveInt("OPENDATA_PAGE_LIMIT", 100)
	if err != nil {
		return nil, err
	}

	years, err := parseYears(envOrDefault("INSIGHT_YEARS", "2020-2025"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":8050"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		OpenDataBaseURL:   envOrDefault("OPENDATA_BASE_URL", defaultBaseURL),
		OpenDataTimeout:   openDataTimeout,
		OpenDataRateLimit: rateLimit,
		OpenDataPageLimit: pageLimit,
		InsightYears:      years,
	}

	if cfg.OpenDataBaseURL == "" {
		return nil, errors.New("OPENDATA_BASE_URL is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

// parseYears accepts either an inclusive range ("2020-2025") or a
// comma-separated list ("2020,2021,2022").
func parseYears(s string) ([]int, error) {
	if first, last, ok := strings.Cut(s, "-"); ok {
		lo, errLo := strconv.Atoi(strings.TrimSpace(first))
		hi, errHi := strconv.Atoi(strings.TrimSpace(last))
		if errLo != nil || errHi != nil || lo > hi {
			return nil, errors.New("invalid INSIGHT_YEARS")
		}
		years := make([]int, 0, hi-lo+1)
		for y := lo; y <= hi; y++ {
			years = append(years, y)
		}
		return years, nil
	}

	var years []int
	for _, part := range strings.Split(s, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.New("invalid INSIGHT_YEARS")
		}
		years = append(years, y)
	}
	if len(years) == 0 {
		return nil, errors.New("invalid INSIGHT_YEARS")
	}
	return years, nil
}
