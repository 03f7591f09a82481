package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.BindAddr)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, 5, cfg.MaxSteps)
	assert.Equal(t, 100, cfg.MaxBasketQuantity)
	assert.Equal(t, "reject", cfg.ResponseStrictness)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "shopguard", cfg.MetricsNamespace)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SHOPGUARD_BIND_ADDR", ":9999")
	t.Setenv("SHOPGUARD_PROVIDER", ProviderMock)
	t.Setenv("SHOPGUARD_MAX_STEPS", "8")
	t.Setenv("SHOPGUARD_MAX_BASKET_QUANTITY", "25")
	t.Setenv("SHOPGUARD_RESPONSE_STRICTNESS", "rewrite")
	t.Setenv("SHOPGUARD_REQUEST_TIMEOUT", "15s")
	t.Setenv("SHOPGUARD_AUTH_TOKEN", "sesame")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.BindAddr)
	assert.Equal(t, ProviderMock, cfg.Provider)
	assert.Equal(t, 8, cfg.MaxSteps)
	assert.Equal(t, 25, cfg.MaxBasketQuantity)
	assert.Equal(t, "rewrite", cfg.ResponseStrictness)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "sesame", cfg.AuthToken)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown provider", "SHOPGUARD_PROVIDER", "oracle"},
		{"bad max steps", "SHOPGUARD_MAX_STEPS", "many"},
		{"bad timeout", "SHOPGUARD_REQUEST_TIMEOUT", "soon"},
		{"unknown strictness", "SHOPGUARD_RESPONSE_STRICTNESS", "lenient"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
