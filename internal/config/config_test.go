package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogPath = "/data/crops.toml"

// clearEnv removes process variables for the duration of the test:
// t.Setenv registers the restore, Unsetenv drops the placeholder.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"KCURVE_CONFIG", "KCURVE_CATALOG_PATH", "KCURVE_CLIMATE_PATH",
		"KCURVE_LOG_LEVEL", "KCURVE_LOG_FORMAT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.CatalogPath)
	assert.Empty(t, cfg.ClimatePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_CustomEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("KCURVE_CATALOG_PATH", testCatalogPath)
	t.Setenv("KCURVE_CLIMATE_PATH", "/data/site.yaml")
	t.Setenv("KCURVE_LOG_LEVEL", "debug")
	t.Setenv("KCURVE_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testCatalogPath, cfg.CatalogPath)
	assert.Equal(t, "/data/site.yaml", cfg.ClimatePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "kcurve.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("log_level: warn\ncatalog_path: "+testCatalogPath+"\n"), 0o600))
	t.Setenv("KCURVE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, testCatalogPath, cfg.CatalogPath)
	assert.Equal(t, "text", cfg.LogFormat, "keys the file omits keep their defaults")
}

func TestLoad_FromTOMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "kcurve.toml")
	require.NoError(t, os.WriteFile(path,
		[]byte("log_level = \"warn\"\ncatalog_path = \""+testCatalogPath+"\"\n"), 0o600))
	t.Setenv("KCURVE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, testCatalogPath, cfg.CatalogPath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "kcurve.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))
	t.Setenv("KCURVE_CONFIG", path)
	t.Setenv("KCURVE_LOG_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("KCURVE_LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "loud")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	clearEnv(t)
	t.Setenv("KCURVE_LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_format")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("KCURVE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config file")
}

func TestLoad_UnsupportedConfigExtension(t *testing.T) {
	clearEnv(t)
	t.Setenv("KCURVE_CONFIG", "kcurve.ini")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}
