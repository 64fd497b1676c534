package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Endpoint)
	assert.Equal(t, 30000, cfg.TimeoutMs)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SEMESTRA_ENDPOINT", "https://planner.example.edu")
	t.Setenv("SEMESTRA_TIMEOUT_MS", "5000")
	t.Setenv("SEMESTRA_MAX_RETRIES", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://planner.example.edu", cfg.Endpoint)
	assert.Equal(t, 5000, cfg.TimeoutMs)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp"
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Endpoint = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.TimeoutMs = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxRetries = -1
	assert.Error(t, bad.Validate())
}
