package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/fitness-catalog/internal/gifurl"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "exercises", cfg.Database.Collection)
	assert.Equal(t, "https://exercisedb.p.rapidapi.com", cfg.Catalog.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 20, cfg.Catalog.ImportLimit)
	assert.Equal(t, "proxy", cfg.Gif.Mode)
	assert.Equal(t, 180, cfg.Gif.Resolution)
	assert.Equal(t, uint32(5), cfg.Proxy.BreakerFailures)
	assert.Equal(t, 24, cfg.Proxy.Burst)
	assert.Greater(t, cfg.Proxy.RequestsPerSecond, cfg.Catalog.RequestsPerSecond)
	assert.Empty(t, cfg.Catalog.APIKey)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CATALOG_API_KEY", "env-key")
	t.Setenv("GIF_PROXY_BASE_URL", "https://api.example.com")
	t.Setenv("GIF_MODE", "direct")
	t.Setenv("CATALOG_TIMEOUT", "3s")
	t.Setenv("S3_BUCKET_NAME", "gif-cache")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Catalog.APIKey)
	assert.Equal(t, "https://api.example.com", cfg.Gif.ProxyBaseURL)
	assert.Equal(t, "direct", cfg.Gif.Mode)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.True(t, cfg.S3.Enabled())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("database:\n  name: fitness_test\ncatalog:\n  import_limit: 50\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "fitness_test", cfg.Database.Name)
	assert.Equal(t, 50, cfg.Catalog.ImportLimit)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.Validate(RequireStore))

	err = cfg.Validate(RequireStore, RequireCatalog, RequireGif)
	require.ErrorIs(t, err, ErrMissingConfig)
	assert.Contains(t, err.Error(), "catalog.api_key")
	assert.Contains(t, err.Error(), "gif.proxy_base_url")

	cfg.Catalog.APIKey = "k"
	cfg.Gif.Mode = "direct"
	assert.NoError(t, cfg.Validate(RequireCatalog, RequireGif))

	cfg.Gif.Mode = "cdn"
	assert.Error(t, cfg.Validate(RequireGif))
}

func TestGifBuilder(t *testing.T) {
	cfg := Config{
		Catalog: CatalogConfig{APIKey: "k"},
		Gif:     GifConfig{Mode: "proxy", ProxyBaseURL: "https://api.example.com", Resolution: 180},
	}
	b, err := cfg.GifBuilder()
	require.NoError(t, err)
	assert.Equal(t, gifurl.ModeProxy, b.Mode)
	assert.Equal(t, "https://api.example.com/api/gifs/exercise/0001", b.URL("0001"))
}
