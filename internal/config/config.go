// Package config provides configuration loading and validation for the API
// server. It uses koanf to merge environment variables with optional file
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Redis (swipe quota counters, health checks)
	RedisURL string `koanf:"redis_url"`

	// JWT Authentication
	JWTSecret string `koanf:"jwt_secret"`

	// Stripe subscription plans
	StripeAPIKey         string `koanf:"stripe_api_key"`
	StripeGoldPriceID    string `koanf:"stripe_gold_price_id"`
	StripeDiamondPriceID string `koanf:"stripe_diamond_price_id"`
	StripeCouplePriceID  string `koanf:"stripe_couple_price_id"`

	// Ranking
	CalibrationPath string `koanf:"calibration_path"` // Optional boost calibration JSON

	// MatchProbabilityFallback restores the legacy dice-roll match
	// behavior instead of the mutual-like check.
	MatchProbabilityFallback bool `koanf:"match_probability_fallback"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL  = errors.New("DATABASE_URL is required")
	ErrMissingRedisURL     = errors.New("REDIS_URL is required")
	ErrMissingJWTSecret    = errors.New("JWT_SECRET is required")
	ErrMissingStripeAPIKey = errors.New("STRIPE_API_KEY is required")
	ErrInvalidPort         = errors.New("PORT must be a valid integer")
)

// Default values for non-secret configuration.
const (
	DefaultPort = 8080
	DefaultEnv  = "development"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if
// valid). If a config file path is provided and the file cannot be loaded,
// an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault([]string{"OPENLOVE_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	matchFallback := k.Bool("match_probability_fallback")
	if val := os.Getenv("MATCH_PROBABILITY_FALLBACK"); val != "" {
		// Env var takes precedence over file config
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			matchFallback = true
		case "false", "0", "no", "off":
			matchFallback = false
		}
	}

	cfg := &Config{
		Port:                     port,
		Env:                      getEnvOrDefaultMulti([]string{"OPENLOVE_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DatabaseURL:              getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:                 getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		JWTSecret:                getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		StripeAPIKey:             getEnvOrKoanf("STRIPE_API_KEY", k, "stripe_api_key"),
		StripeGoldPriceID:        getEnvOrKoanf("STRIPE_GOLD_PRICE_ID", k, "stripe_gold_price_id"),
		StripeDiamondPriceID:     getEnvOrKoanf("STRIPE_DIAMOND_PRICE_ID", k, "stripe_diamond_price_id"),
		StripeCouplePriceID:      getEnvOrKoanf("STRIPE_COUPLE_PRICE_ID", k, "stripe_couple_price_id"),
		CalibrationPath:          getEnvOrKoanf("CALIBRATION_PATH", k, "calibration_path"),
		MatchProbabilityFallback: matchFallback,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise
// the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or
// default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value,
// or default. Returns an error if an environment variable is set but
// cannot be parsed as an integer.
func getEnvIntOrDefault(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.RedisURL == "" {
		errs = append(errs, ErrMissingRedisURL)
	}
	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}

	// The Stripe price ids are optional (tiers default to free without
	// them), but setting any of them requires the API key.
	if c.StripeAPIKey == "" &&
		(c.StripeGoldPriceID != "" || c.StripeDiamondPriceID != "" || c.StripeCouplePriceID != "") {
		errs = append(errs, ErrMissingStripeAPIKey)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                       fmt.Sprintf("%d", c.Port),
		"env":                        c.Env,
		"database_url":               maskDatabaseURL(c.DatabaseURL),
		"redis_url":                  maskDatabaseURL(c.RedisURL),
		"jwt_secret":                 maskSecret(c.JWTSecret),
		"stripe_api_key":             maskStripeKey(c.StripeAPIKey),
		"stripe_gold_price_id":       c.StripeGoldPriceID,
		"stripe_diamond_price_id":    c.StripeDiamondPriceID,
		"stripe_couple_price_id":     c.StripeCouplePriceID,
		"calibration_path":           c.CalibrationPath,
		"match_probability_fallback": fmt.Sprintf("%t", c.MatchProbabilityFallback),
	}
}

// maskSecret masks a secret value, showing only the first 4 characters
// followed by ****. Secrets shorter than 8 characters are fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskStripeKey masks a Stripe API key, preserving the prefix (sk_live_,
// sk_test_, etc.)
func maskStripeKey(s string) string {
	if s == "" {
		return "<not set>"
	}

	parts := strings.SplitN(s, "_", 3)
	if len(parts) == 3 {
		return parts[0] + "_" + parts[1] + "_****"
	}

	return maskSecret(s)
}

// maskDatabaseURL masks the password in a connection URL. Supports
// postgres://, postgresql://, and redis:// schemes.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
