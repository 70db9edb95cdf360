package src

import (
	"os"
	"restaurant_chat/src/conversation"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "HOST", "CORS_ORIGIN", "LLM_MODEL", "LLM_TEMPERATURE", "OPENAI_API_KEY", "OPEN_AI_API_KEY",
		"REPORT_API_BASE_URL", "CHAT_BATCH_WINDOW", "CHAT_BATCH_FALLBACK", "CHAT_MEMORY_MAX_PER_ROLE",
		"CHAT_MAX_MESSAGE_LENGTH", "CHAT_TOOL_CALL_LIMIT", "REPORT_CACHE_TTL", "LLM_PROVIDER")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3001, config.ServerConfig.Port)
	assert.Equal(t, "0.0.0.0", config.ServerConfig.Host)
	assert.Equal(t, "http://localhost:3000", config.ServerConfig.CORSOrigin)
	assert.Equal(t, "gpt-4.1-mini", config.LLMConfig.Model)
	assert.Equal(t, float32(0), config.LLMConfig.Temperature)
	assert.Equal(t, 5, config.ChatConfig.MemoryMaxPerRole)
	assert.Equal(t, 500*time.Millisecond, config.ChatConfig.BatchWindow)
	assert.Equal(t, conversation.DefaultBatchWindow, config.ChatConfig.BatchWindow)
	assert.Equal(t, 100*time.Millisecond, config.ChatConfig.BatchFallback)
	assert.Equal(t, 4000, config.ChatConfig.MaxMessageLength)
	assert.Equal(t, 2, config.ChatConfig.ToolCallLimit)
	assert.Equal(t, 5*time.Minute, config.ReportConfig.CacheTTL)
	assert.Equal(t, "http://localhost:3001", config.ReportConfig.BaseURL)
	assert.True(t, config.ReportConfig.Local)
	assert.Equal(t, "0.0.0.0:3001", config.ListenAddr())
	assert.False(t, config.LLMConfig.HasCredential())
}

func TestLoadConfigLegacyKey(t *testing.T) {
	unsetEnv(t, "OPENAI_API_KEY", "REPORT_API_BASE_URL", "LLM_PROVIDER")
	t.Setenv("OPEN_AI_API_KEY", "sk-legacy")
	t.Setenv("PORT", "4100")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sk-legacy", config.LLMConfig.Credential())
	assert.True(t, config.LLMConfig.HasCredential())
	assert.Equal(t, "http://localhost:4100", config.ReportConfig.BaseURL)
}

func TestLoadConfigInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := LoadConfig()
	assert.Error(t, err)
}

// unsetEnv removes keys for the duration of the test
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		// Setenv registers the restore cleanup before we unset.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
