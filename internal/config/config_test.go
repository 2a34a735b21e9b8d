package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docex/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "2024-12-01-preview", cfg.Extractor.APIVersion)
	assert.Equal(t, 4096, cfg.Extractor.MaxTokens)
	assert.Equal(t, 0.1, cfg.Extractor.Temperature)
	assert.Equal(t, 0.1, cfg.Extractor.TopP)

	assert.Equal(t, "azure", cfg.Layout.Provider)
	assert.Equal(t, 2, cfg.Layout.MaxRetries)
	assert.False(t, cfg.Layout.Strict)
	assert.Equal(t, 2000, cfg.Layout.PollIntervalMSec)

	assert.Equal(t, "pdftoppm", cfg.Render.PdftoppmPath)
	assert.Equal(t, 150, cfg.Render.DPI)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCEX_EXTRACTOR_ENDPOINT", "https://models.example.com")
	t.Setenv("DOCEX_EXTRACTOR_DEPLOYMENT", "gpt-4o")
	t.Setenv("DOCEX_LAYOUT_PROVIDER", "tesseract")
	t.Setenv("DOCEX_LAYOUT_STRICT", "true")
	t.Setenv("DOCEX_RENDER_DPI", "300")
	t.Setenv("DOCEX_AUTH_API_KEY", "inbound-key")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://models.example.com", cfg.Extractor.Endpoint)
	assert.Equal(t, "gpt-4o", cfg.Extractor.Deployment)
	assert.Equal(t, "tesseract", cfg.Layout.Provider)
	assert.True(t, cfg.Layout.Strict)
	assert.Equal(t, 300, cfg.Render.DPI)
	assert.Equal(t, "inbound-key", cfg.Auth.APIKey)
}

func TestLoad_PlatformPortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)

	t.Setenv("DOCEX_SERVER_PORT", ":7070")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Port)
}
