// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/newmiodek/rejestr-skladek/internal/submit"
)

// devTokenSecret signs form tokens when FORM_TOKEN_SECRET is unset in the
// dev environment.
const devTokenSecret = "dev-form-token-secret"

// EnvDev is the only environment that may run without FORM_TOKEN_SECRET.
const EnvDev = "dev"

// Config holds the server settings.
type Config struct {
	Env           string
	Port          int
	DBPath        string
	SubmitURL     string
	TokenSecret   string
	TokenTTL      time.Duration
	ShakeDuration time.Duration
	SubmitTimeout time.Duration
	SweepInterval time.Duration

	// LoginPath and SuccessPattern tell the submitter how to read the
	// register backend's redirects.
	LoginPath      string
	SuccessPattern *regexp.Regexp

	// CORSOrigins are the browser origins allowed to call the API.
	CORSOrigins []string
}

// DevSecret reports whether tokens are signed with the built-in secret.
func (c *Config) DevSecret() bool {
	return c.TokenSecret == devTokenSecret
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// Load reads the configuration from environment variables, applying
// defaults for unset ones.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}

	cfg := &Config{
		Env:         getEnv("APP_ENV", EnvDev),
		Port:        port,
		DBPath:      getEnv("DB_PATH", "./data/forms.db"),
		SubmitURL:   getEnv("SUBMIT_URL", "http://localhost:8000"),
		TokenSecret: os.Getenv("FORM_TOKEN_SECRET"),
		LoginPath:   getEnv("SUBMIT_LOGIN_PATH", submit.DefaultLoginPath),
	}

	if cfg.TokenSecret == "" {
		if cfg.Env != EnvDev {
			return nil, fmt.Errorf("FORM_TOKEN_SECRET is required when APP_ENV=%s", cfg.Env)
		}
		cfg.TokenSecret = devTokenSecret
	}

	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	pattern := getEnv("SUBMIT_SUCCESS_PATTERN", submit.DefaultSuccessPattern)
	if cfg.SuccessPattern, err = regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("invalid SUBMIT_SUCCESS_PATTERN: %w", err)
	}

	if cfg.TokenTTL, err = getDuration("FORM_TOKEN_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShakeDuration, err = getDuration("SHAKE_DURATION", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.SubmitTimeout, err = getDuration("SUBMIT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}
