package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "turbo"
	cfg.Polymarket.GammaHost = ""
	cfg.Scanner.MatchPrefixLen = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "gamma_host")
	assert.Contains(t, err.Error(), "match_prefix_len")
}

func TestValidateArchiveRequiresS3(t *testing.T) {
	cfg := Defaults()
	cfg.Archive.Enabled = true
	cfg.S3.Bucket = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestLoadAppliesFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "scan"

[scanner]
interval = "45s"
`), 0o644))

	t.Setenv("ARBSENSE_SERVER_PORT", "9100")
	t.Setenv("ARBSENSE_NOTIFY_EVENTS", "opportunity, trade_executed")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, 45*time.Second, cfg.Scanner.Interval.Duration)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"opportunity", "trade_executed"}, cfg.Notify.Events)

	// Untouched fields keep their defaults.
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.GammaHost)
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Kalshi.ApiKey = "secret-key"
	cfg.Database.Password = "hunter2"
	cfg.Server.APIKey = ""

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Kalshi.ApiKey)
	assert.Equal(t, "***", red.Database.Password)
	assert.Empty(t, red.Server.APIKey, "empty secrets stay empty")
	assert.Equal(t, "secret-key", cfg.Kalshi.ApiKey, "original untouched")
}
