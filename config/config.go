// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted by SHOPGUARD_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Config holds all runtime settings for the service.
type Config struct {
	// HTTP
	BindAddr       string
	AuthToken      string
	RequestTimeout time.Duration

	// Model provider
	Provider  string
	ModelName string
	APIKey    string

	// Pipeline tuning
	MaxSteps           int
	MaxBasketQuantity  int
	ResponseStrictness string

	// Observability
	MetricsNamespace string
	LogLevel         string
	LogFormat        string
}

// Load reads the configuration from the environment, applying defaults for
// anything unset. It returns an error for values that fail to parse or for
// an unknown provider.
func Load() (*Config, error) {
	cfg := &Config{
		BindAddr:           envOrDefault("SHOPGUARD_BIND_ADDR", ":8080"),
		AuthToken:          os.Getenv("SHOPGUARD_AUTH_TOKEN"),
		Provider:           envOrDefault("SHOPGUARD_PROVIDER", ProviderOpenAI),
		ModelName:          os.Getenv("SHOPGUARD_MODEL"),
		APIKey:             os.Getenv("SHOPGUARD_API_KEY"),
		ResponseStrictness: envOrDefault("SHOPGUARD_RESPONSE_STRICTNESS", "reject"),
		MetricsNamespace:   envOrDefault("SHOPGUARD_METRICS_NAMESPACE", "shopguard"),
		LogLevel:           envOrDefault("SHOPGUARD_LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("SHOPGUARD_LOG_FORMAT", "json"),
	}

	var err error
	if cfg.MaxSteps, err = intFromEnv("SHOPGUARD_MAX_STEPS", 5); err != nil {
		return nil, err
	}
	if cfg.MaxBasketQuantity, err = intFromEnv("SHOPGUARD_MAX_BASKET_QUANTITY", 100); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = durationFromEnv("SHOPGUARD_REQUEST_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.ResponseStrictness != "reject" && cfg.ResponseStrictness != "rewrite" {
		return nil, fmt.Errorf("unknown response strictness %q", cfg.ResponseStrictness)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
