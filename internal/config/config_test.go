package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meddsl/meddsl/internal/config"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meddsl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_format: text\nstore_dsn: postgres://localhost/meddsl\n"), 0o600))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "postgres://localhost/meddsl", cfg.StoreDSN)
	assert.Equal(t, config.Defaults().MetricsAddr, cfg.MetricsAddr)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meddsl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_format: text\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log_format", "json", "")
	require.NoError(t, flags.Set("log_format", "json"))
	require.NoError(t, flags.Parse(nil))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestConfig_Validate_RejectsBadLogFormat(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogFormat = "xml"
	err := cfg.Validate()
	require.Error(t, err)
}

func TestConfig_Validate_RejectsNegativeCacheStale(t *testing.T) {
	cfg := config.Defaults()
	cfg.CacheStale = -time.Second
	err := cfg.Validate()
	require.Error(t, err)
}

func TestConfig_Validate_RejectsNonPositiveCacheCapacity(t *testing.T) {
	cfg := config.Defaults()
	cfg.CacheCapacity = 0
	err := cfg.Validate()
	require.Error(t, err)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}
