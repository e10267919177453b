package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, 2, cfg.DailyLimit)
	assert.Equal(t, 12*time.Hour, cfg.Cooldown())
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, "openai", cfg.AgentProvider)
	assert.Equal(t, "gpt-4", cfg.OpenAIModel)
	assert.False(t, cfg.DATMintEnabled)
	assert.False(t, cfg.PinataConfigured())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("DAILY_LIMIT", "5")
	t.Setenv("COOLDOWN_HOURS", "1")
	t.Setenv("SWEEP_INTERVAL", "30m")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("AGENT_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("PINATA_API_KEY", "k")
	t.Setenv("PINATA_API_SECRET", "s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5, cfg.DailyLimit)
	assert.Equal(t, time.Hour, cfg.Cooldown())
	assert.Equal(t, 30*time.Minute, cfg.SweepInterval)
	assert.Equal(t, "gemini", cfg.AgentProvider)
	assert.True(t, cfg.GenaiConfigured())
	assert.True(t, cfg.PinataConfigured())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.dev"), []byte("REDIS_ADDR=localhost:6379\n"), 0o600))
	// godotenv does not override variables that are already set.
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("REDIS_ADDR")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{name: "zero daily limit", key: "DAILY_LIMIT", value: "0"},
		{name: "negative cooldown", key: "COOLDOWN_HOURS", value: "-1"},
		{name: "unknown provider", key: "AGENT_PROVIDER", value: "llama"},
		{name: "bad timezone", key: "TIMEZONE", value: "Mars/Olympus"},
		{name: "zero idle ttl", key: "USAGE_IDLE_TTL", value: "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
