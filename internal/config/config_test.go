package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ENGINE_BROKER_BIND", "ENGINE_BROKER_CERT_PEM", "ENGINE_BROKER_KEY_PEM",
		"ENGINE_BROKER_DATABASE_URL", "ENGINE_BROKER_ANALYSE_TIMEOUT_SEC",
		"ENGINE_BROKER_ACQUIRE_TIMEOUT_SEC", "ENGINE_BROKER_REDIS_ADDR",
		"ENGINE_BROKER_REDIS_ENABLED", "ENGINE_BROKER_LOG",
	} {
		os.Unsetenv(k)
	}
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	clearEnv(t)
	cfg := &Config{}
	cfg.applyEnvOverrides()

	assert.Equal(t, "127.0.0.1:9666", cfg.Server.Bind)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Analyse())
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Acquire())
	assert.Equal(t, 13*time.Second, cfg.GC.Hub())
	assert.Equal(t, 7*time.Second, cfg.GC.Ongoing())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestApplyEnvOverrides_OverridesBind(t *testing.T) {
	clearEnv(t)
	os.Setenv("ENGINE_BROKER_BIND", "0.0.0.0:8080")
	defer os.Unsetenv("ENGINE_BROKER_BIND")

	cfg := &Config{}
	cfg.applyEnvOverrides()
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Bind)
}

func TestApplyEnvOverrides_TimeoutMustBePositiveToOverride(t *testing.T) {
	clearEnv(t)
	cfg := &Config{Timeouts: TimeoutsConfig{AnalyseSec: 20}}
	os.Setenv("ENGINE_BROKER_ANALYSE_TIMEOUT_SEC", "0")
	defer os.Unsetenv("ENGINE_BROKER_ANALYSE_TIMEOUT_SEC")

	cfg.applyEnvOverrides()
	assert.Equal(t, 20, cfg.Timeouts.AnalyseSec, "zero/invalid override is ignored, not applied")
}

func TestApplyEnvOverrides_RedisAddrImpliesEnabled(t *testing.T) {
	clearEnv(t)
	os.Setenv("ENGINE_BROKER_REDIS_ADDR", "redis:6379")
	defer os.Unsetenv("ENGINE_BROKER_REDIS_ADDR")

	cfg := &Config{}
	cfg.applyEnvOverrides()
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoadConfig_MissingFileIsAnError(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err, "a missing config file is not fatal, defaults stand in")
	assert.Equal(t, "127.0.0.1:9666", cfg.Server.Bind)
}

func TestLoadConfig_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  bind: "10.0.0.1:9000"
registry:
  database_url: "postgres://localhost/engines"
timeouts:
  analyse_sec: 30
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:9000", cfg.Server.Bind)
	assert.Equal(t, "postgres://localhost/engines", cfg.Registry.DatabaseURL)
	assert.Equal(t, 30, cfg.Timeouts.AnalyseSec)
}

func TestGetEnvBool(t *testing.T) {
	os.Setenv("TEST_BOOL_TRUE", "true")
	os.Setenv("TEST_BOOL_ONE", "1")
	os.Setenv("TEST_BOOL_FALSE", "false")
	defer func() {
		os.Unsetenv("TEST_BOOL_TRUE")
		os.Unsetenv("TEST_BOOL_ONE")
		os.Unsetenv("TEST_BOOL_FALSE")
	}()

	assert.True(t, getEnvBool("TEST_BOOL_TRUE", false))
	assert.True(t, getEnvBool("TEST_BOOL_ONE", false))
	assert.False(t, getEnvBool("TEST_BOOL_FALSE", true))
	assert.True(t, getEnvBool("TEST_BOOL_MISSING", true))
}

func TestGetEnvInt(t *testing.T) {
	os.Setenv("TEST_INT", "42")
	defer os.Unsetenv("TEST_INT")

	assert.Equal(t, 42, getEnvInt("TEST_INT", 0))
	assert.Equal(t, 7, getEnvInt("TEST_INT_MISSING", 7))
}
