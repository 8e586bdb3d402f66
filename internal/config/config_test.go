package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENROUTER_BASE_URL", "")
	t.Setenv("LLM_TIMEOUT", "")

	cfg := Load()

	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "meta-llama/llama-3.3-70b-instruct:free", cfg.LLM.Model)
	assert.Equal(t, "SwaggerAnalyzer", cfg.LLM.AppTitle)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Session.Store)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("OPENROUTER_BASE_URL", "http://localhost:9999/v1/")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestGetEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_SLICE", " , ")

	assert.Equal(t, 7, getEnvInt("X_INT", 7))
	assert.False(t, getEnvBool("X_BOOL", false))
	assert.Equal(t, time.Minute, getEnvDuration("X_DUR", time.Minute))
	assert.Equal(t, []string{"d"}, getEnvSlice("X_SLICE", []string{"d"}))
}
