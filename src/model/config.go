package model

import (
	"fmt"
	"strings"
	"time"
)

// ----------------------------------------------------
// ================ Config ================

// LogConfig controls the global zerolog logger
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"rfc3339"`
	Output     string `envconfig:"LOG_OUTPUT" default:"stdout"`
	Format     string `envconfig:"LOG_FORMAT" default:"console"`
	FilePath   string `envconfig:"LOG_FILE_PATH" default:"logs/app.log"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Port       int    `envconfig:"PORT" default:"3001"`
	Host       string `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"http://localhost:3000"`
}

// LLMConfig selects and configures the completion provider
type LLMConfig struct {
	Provider       string  `envconfig:"LLM_PROVIDER" default:"openai"`
	Model          string  `envconfig:"LLM_MODEL" default:"gpt-4.1-mini"`
	BaseURL        string  `envconfig:"LLM_BASE_URL"`
	APIKey         string  `envconfig:"OPENAI_API_KEY"`
	LegacyAPIKey   string  `envconfig:"OPEN_AI_API_KEY"`
	Temperature    float32 `envconfig:"LLM_TEMPERATURE" default:"0"`
	MaxTokens      int     `envconfig:"LLM_MAX_TOKENS" default:"0"`
	TimeoutSeconds int     `envconfig:"LLM_TIMEOUT_SECONDS" default:"120"`
}

// Credential returns the configured provider key, preferring OPENAI_API_KEY
func (c LLMConfig) Credential() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return c.LegacyAPIKey
}

// HasCredential reports whether the selected provider can be called.
// Local ollama models run without a key.
func (c LLMConfig) HasCredential() bool {
	if strings.EqualFold(c.Provider, "ollama") {
		return true
	}
	return c.Credential() != ""
}

// MissingCredentialError is the client-facing message when HasCredential
// is false. The key variable is shared by every keyed provider.
func (c LLMConfig) MissingCredentialError() string {
	if c.Provider == "" || strings.EqualFold(c.Provider, "openai") {
		return "Missing OPENAI_API_KEY"
	}
	return fmt.Sprintf("Missing OPENAI_API_KEY for provider %s", c.Provider)
}

// Timeout returns the provider request timeout
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ChatConfig tunes the conversational pipeline
type ChatConfig struct {
	MemoryMaxPerRole int           `envconfig:"CHAT_MEMORY_MAX_PER_ROLE" default:"5"`
	BatchWindow      time.Duration `envconfig:"CHAT_BATCH_WINDOW" default:"500ms"`
	BatchFallback    time.Duration `envconfig:"CHAT_BATCH_FALLBACK" default:"100ms"`
	MaxMessageLength int           `envconfig:"CHAT_MAX_MESSAGE_LENGTH" default:"4000"`
	ToolCallLimit    int           `envconfig:"CHAT_TOOL_CALL_LIMIT" default:"2"`
	MaxRetries       uint64        `envconfig:"CHAT_MAX_RETRIES" default:"3"`
	MaxSteps         int           `envconfig:"CHAT_MAX_STEPS" default:"5"`
}

// ReportConfig points at the report snapshot data and its consumers
type ReportConfig struct {
	BaseURL       string        `envconfig:"REPORT_API_BASE_URL"`
	DataDir       string        `envconfig:"DATA_DIR" default:"data"`
	CacheTTL      time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`
	CataloguePath string        `envconfig:"CATALOGUE_PATH"`
	FetchTimeout  time.Duration `envconfig:"REPORT_FETCH_TIMEOUT" default:"30s"`
	MaxArrayItems int           `envconfig:"REPORT_MAX_ARRAY_ITEMS" default:"20"`
	// Local is set when BaseURL defaulted to this server
	Local bool `ignored:"true"`
}

// RedisConfig enables the optional second-level report cache
type RedisConfig struct {
	URL string        `envconfig:"REDIS_URL"`
	TTL time.Duration `envconfig:"REDIS_TTL" default:"5m"`
}
