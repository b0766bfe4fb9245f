package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries all environment-driven settings. Values are read once
// at startup; components receive what they need explicitly instead of
// consulting the environment themselves.
type Config struct {
	// APIBaseURL is the analysis-service HTTP origin. Empty selects the
	// local mock backend (demo mode).
	APIBaseURL string
	// StreamURL is the live-analysis websocket endpoint.
	StreamURL string
	AuthToken string

	MaxUploadSize  int64
	UploadDir      string
	FrameRates     []int
	ConnectTimeout time.Duration

	Port string

	DB DBConfig
}

type DBConfig struct {
	Type       string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SQLitePath string
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIBaseURL:     os.Getenv("MEDIAGUARD_API_URL"),
		StreamURL:      os.Getenv("MEDIAGUARD_STREAM_URL"),
		AuthToken:      os.Getenv("MEDIAGUARD_AUTH_TOKEN"),
		UploadDir:      envOr("UPLOAD_DIR", "./uploads"),
		Port:           envOr("PORT", "8080"),
		ConnectTimeout: 10 * time.Second,
	}

	maxUpload := envOr("MAX_UPLOAD_SIZE", "524288000")
	size, err := strconv.ParseInt(maxUpload, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE: %w", err)
	}
	cfg.MaxUploadSize = size

	if raw := os.Getenv("CONNECT_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid CONNECT_TIMEOUT_SECONDS: %q", raw)
		}
		cfg.ConnectTimeout = time.Duration(secs) * time.Second
	}

	rates, err := parseFrameRates(envOr("FRAME_RATES", "1,2,5"))
	if err != nil {
		return nil, err
	}
	cfg.FrameRates = rates

	cfg.DB = DBConfig{Type: envOr("DB_TYPE", "sqlite")}
	if cfg.DB.Type == "postgres" {
		cfg.DB.Host = envOr("DB_HOST", "localhost")
		port, err := strconv.Atoi(envOr("DB_PORT", "5432"))
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT: %w", err)
		}
		cfg.DB.Port = port
		cfg.DB.User = envOr("DB_USER", "mediaguard")
		cfg.DB.Password = envOr("DB_PASSWORD", "mediaguard_dev")
		cfg.DB.Name = envOr("DB_NAME", "mediaguard")
	} else {
		cfg.DB.SQLitePath = envOr("DB_PATH", "./mediaguard.db")
	}

	return cfg, nil
}

// DemoMode reports whether the local mock backend should be used. The
// choice is made once at startup, never per call site.
func (c *Config) DemoMode() bool {
	return c.APIBaseURL == ""
}

// AllowsFrameRate reports whether rate is one of the accepted capture
// rates.
func (c *Config) AllowsFrameRate(rate int) bool {
	for _, r := range c.FrameRates {
		if r == rate {
			return true
		}
	}
	return false
}

func parseFrameRates(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	rates := make([]int, 0, len(parts))
	for _, p := range parts {
		rate, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("invalid FRAME_RATES entry: %q", p)
		}
		rates = append(rates, rate)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("FRAME_RATES must list at least one rate")
	}
	return rates, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
