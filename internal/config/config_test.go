package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.Gemini.Model)
	assert.Equal(t, "deepseek-reasoner", cfg.LLM.DeepSeek.Model)
	assert.Equal(t, 20*time.Second, cfg.LLM.AskTimeout)
	assert.Equal(t, 18*time.Second, cfg.LLM.ClientTimeout)
	assert.Empty(t, cfg.LLM.Gemini.APIKey)
}

func TestLoad_ProviderKeysFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("DEEPSEEK_API_KEY", "d-key")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "d-key", cfg.LLM.DeepSeek.APIKey)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Database.URL = "postgres://localhost/db"
	cfg.Auth.JWTSecret = "secret"
	cfg.LLM.AskTimeout = 20 * time.Second
	cfg.LLM.ClientTimeout = 18 * time.Second
	cfg.Health.Interval = time.Minute
	cfg.RateLimit.AskPerMinute = 10
	cfg.RateLimit.APIPerMinute = 120
	require.NoError(t, cfg.Validate())

	cfg.LLM.ClientTimeout = 25 * time.Second
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.client_timeout")

	cfg.LLM.ClientTimeout = 18 * time.Second
	cfg.Auth.JWTSecret = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.Auth.JWTSecret = "secret"
	cfg.RateLimit.AskPerMinute = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratelimit")
}
