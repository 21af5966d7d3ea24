package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadAndInitConfigs_Defaults(t *testing.T) {
	dir := t.TempDir()
	config, err := LoadAndInitConfigs(filepath.Join(dir, "missing.yml"), filepath.Join(dir, "missing.env"), "abc123", "", "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, zapcore.InfoLevel, config.LogLevel)
	assert.Equal(t, "abc123", config.GitCommit)
	assert.False(t, config.Events.Enable)
	assert.False(t, config.Limiter.Enable)
}

func TestLoadAndInitConfigs_Sources(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yml")
	envFile := filepath.Join(dir, "config.env")

	yml := `
log_level: debug
ops_endpoints_enable: true
server:
  host: 0.0.0.0
  port: "9000"
  request_timeout: 5s
limiter:
  enable: true
  rps: 5
  burst: 10
`
	require.NoError(t, os.WriteFile(configFile, []byte(yml), 0o600))
	require.NoError(t, os.WriteFile(envFile, []byte("BKS_SERVER_PORT=9100\n"), 0o600))
	t.Setenv("BKS_SERVER_PORT", "")
	os.Unsetenv("BKS_SERVER_PORT")
	t.Setenv("BKS_LIMITER_BURST", "30")

	config, err := LoadAndInitConfigs(configFile, envFile, "", "v1.0.0", "2023-07-02")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, config.LogLevel)
	assert.True(t, config.OpsEndpointsEnable)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "9100", config.Server.Port)
	assert.Equal(t, 5*time.Second, config.Server.RequestTimeout)
	assert.Equal(t, 30*time.Second, config.Server.ShutdownTimeout)
	assert.True(t, config.Limiter.Enable)
	assert.Equal(t, float64(5), config.Limiter.RPS)
	assert.Equal(t, 30, config.Limiter.Burst)
	assert.Equal(t, "v1.0.0", config.GitTag)
	assert.Equal(t, "2023-07-02", config.BuildTime)
}

func TestInitConfig_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"missing host", func(c *Config) { c.Server.Host = "" }},
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"events without redis", func(c *Config) { c.Events.Enable = true; c.Redis.Host = "" }},
		{"limiter without rate", func(c *Config) { c.Limiter.Enable = true; c.Limiter.RPS = 0 }},
		{"log max size", func(c *Config) { c.LogMaxSize = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.modify(config)
			assert.Error(t, InitConfig(config, "", "", ""))
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, InitConfig(DefaultConfig(), "", "", ""))
	})
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("server: ["), 0o600))
	_, err := LoadAndInitConfigs(configFile, "", "", "", "")
	assert.Error(t, err)
}

func TestLoadConfigFile_Empty(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configFile, nil, 0o600))
	config := DefaultConfig()
	require.NoError(t, LoadConfigFile(configFile, config))
	assert.Equal(t, DefaultConfig(), config)
}
