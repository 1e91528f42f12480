package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fireenrich/internal/config"
)

func clearVendorEnv(t *testing.T) {
	for _, k := range []string{
		"FIREENRICH_FIRECRAWL_API_KEY", "FIRECRAWL_API_KEY",
		"FIREENRICH_OPENAI_API_KEY", "OPENAI_API_KEY",
		"FIREENRICH_SERVER_PORT", "PORT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearVendorEnv(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "https://api.firecrawl.dev", cfg.Firecrawl.BaseURL)
	assert.Empty(t, cfg.Firecrawl.APIKey)
	assert.Empty(t, cfg.OpenAI.FallbackModels)
	assert.Equal(t, 3, cfg.Enrichment.Concurrency)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "memory", cfg.Credentials.Store)
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, 9*time.Minute, cfg.Enrichment.RunTimeout)
	assert.Equal(t, 1000, cfg.Upload.MaxRows)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, 10*time.Second, cfg.DB.ConnectTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_BareVendorKeyNames(t *testing.T) {
	clearVendorEnv(t)
	t.Setenv("FIRECRAWL_API_KEY", " fc-bare ")
	t.Setenv("OPENAI_API_KEY", "sk-bare")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "fc-bare", cfg.Firecrawl.APIKey)
	assert.Equal(t, "sk-bare", cfg.OpenAI.APIKey)
}

func TestLoad_PrefixedVendorKeyWins(t *testing.T) {
	clearVendorEnv(t)
	t.Setenv("FIREENRICH_OPENAI_API_KEY", "sk-prefixed")
	t.Setenv("OPENAI_API_KEY", "sk-bare")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "sk-prefixed", cfg.OpenAI.APIKey)
}

func TestLoad_Overrides(t *testing.T) {
	clearVendorEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("FIREENRICH_ENRICHMENT_CONCURRENCY", "0")
	t.Setenv("FIREENRICH_OPENAI_FALLBACK_MODELS", "gpt-4o-mini, ,gpt-4.1-mini")
	t.Setenv("FIREENRICH_SESSION_STORE", "Postgres")
	t.Setenv("FIREENRICH_S3_BUCKET", "exports")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, 1, cfg.Enrichment.Concurrency)
	assert.Equal(t, []string{"gpt-4o-mini", "gpt-4.1-mini"}, cfg.OpenAI.FallbackModels)
	assert.Equal(t, "postgres", cfg.Session.Store)
	assert.True(t, cfg.S3.Enabled())
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", db.DSN())
}

func TestLoad_RunTimeoutStaysUnderWriteTimeout(t *testing.T) {
	clearVendorEnv(t)
	t.Setenv("FIREENRICH_SERVER_WRITE_TIMEOUT", "2m")
	t.Setenv("FIREENRICH_ENRICHMENT_RUN_TIMEOUT", "30m")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 108*time.Second, cfg.Enrichment.RunTimeout)
	assert.Less(t, cfg.Enrichment.RunTimeout, cfg.Server.WriteTimeout)
}
