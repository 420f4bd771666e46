package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"chirp/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithoutPath(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Hostname)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "chirp.db", cfg.Database.Path)
	assert.Equal(t, 90, cfg.Database.RetentionDays)
	assert.Equal(t, 0.3, cfg.Feed.PopularShare)
	assert.Equal(t, 72*time.Hour, cfg.Feed.PopularWindow())
	assert.Equal(t, 3, cfg.Feed.OverfetchFactor)
	assert.True(t, cfg.Enrichment.CountViewsOnRead)
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chirp.toml")
	content := `
[server]
port = 8080

[feed]
popular_share = 0.5
popular_window_hours = 24

[enrichment]
count_views_on_read = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Feed.PopularShare)
	assert.Equal(t, 24*time.Hour, cfg.Feed.PopularWindow())
	assert.False(t, cfg.Enrichment.CountViewsOnRead)

	// Untouched sections keep their defaults
	assert.Equal(t, "localhost", cfg.Server.Hostname)
	assert.Equal(t, "chirp.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Feed.OverfetchFactor)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport="), 0o644))

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}
