// Package config loads the service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xhit/go-str2duration/v2"
)

const (
	DefaultTMDBURL         = "https://api.themoviedb.org/3"
	DefaultUpstreamTimeout = 15 * time.Second
	DefaultRateLimit       = 5
	DefaultDateLocale      = "en-US"
	DefaultPort            = "7006"
	DefaultMetricsPort     = "8081"
)

// ConfigurationError reports a required setting that is missing or invalid.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is not set", e.Key)
	}
	return fmt.Sprintf("%s is invalid: %s", e.Key, e.Reason)
}

type Jackett struct {
	URL    string
	APIKey string
}

type TMDB struct {
	URL    string
	APIKey string
}

type Config struct {
	Jackett Jackett
	TMDB    TMDB

	// UpstreamTimeout bounds every outbound call.
	UpstreamTimeout time.Duration
	// RateLimit is requests per second per upstream; 0 disables limiting.
	RateLimit float64
	RedisHost string

	DateLocale string
	Timezone   string

	Port        string
	MetricsPort string
}

// Load reads .env (if present) and the process environment, then validates
// the result.
func Load() (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from getenv without checking required keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Jackett: Jackett{
			URL:    strings.TrimRight(strings.TrimSpace(getenv("JACKETT_URL")), "/"),
			APIKey: strings.TrimSpace(getenv("JACKETT_API_KEY")),
		},
		TMDB: TMDB{
			URL:    strings.TrimRight(strings.TrimSpace(getenv("TMDB_URL")), "/"),
			APIKey: strings.TrimSpace(getenv("TMDB_API_KEY")),
		},
		UpstreamTimeout: DefaultUpstreamTimeout,
		RateLimit:       DefaultRateLimit,
		RedisHost:       strings.TrimSpace(getenv("REDIS_HOST")),
		DateLocale:      strings.TrimSpace(getenv("DATE_LOCALE")),
		Timezone:        strings.TrimSpace(getenv("TZ_NAME")),
		Port:            strings.TrimSpace(getenv("PORT")),
		MetricsPort:     strings.TrimSpace(getenv("METRICS_PORT")),
	}
	if cfg.TMDB.URL == "" {
		cfg.TMDB.URL = DefaultTMDBURL
	}
	if cfg.DateLocale == "" {
		cfg.DateLocale = DefaultDateLocale
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.MetricsPort == "" {
		cfg.MetricsPort = DefaultMetricsPort
	}

	if raw := strings.TrimSpace(getenv("UPSTREAM_TIMEOUT")); raw != "" {
		d, err := str2duration.ParseDuration(raw)
		if err != nil {
			return nil, &ConfigurationError{Key: "UPSTREAM_TIMEOUT", Reason: err.Error()}
		}
		if d <= 0 {
			return nil, &ConfigurationError{Key: "UPSTREAM_TIMEOUT", Reason: "must be positive"}
		}
		cfg.UpstreamTimeout = d
	}

	if raw := strings.TrimSpace(getenv("RATE_LIMIT")); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps < 0 {
			return nil, &ConfigurationError{Key: "RATE_LIMIT", Reason: "must be a non-negative number"}
		}
		cfg.RateLimit = rps
	}

	return cfg, nil
}

// Validate checks that every required credential is present.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"JACKETT_URL", c.Jackett.URL},
		{"JACKETT_API_KEY", c.Jackett.APIKey},
		{"TMDB_API_KEY", c.TMDB.APIKey},
	}
	for _, r := range required {
		if r.value == "" {
			return &ConfigurationError{Key: r.key}
		}
	}
	return nil
}
