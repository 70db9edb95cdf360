package src

import (
	"fmt"
	"restaurant_chat/src/model"

	"github.com/kelseyhightower/envconfig"
)

// Config embeds each section so its envconfig keys stay unprefixed
type Config struct {
	model.LogConfig
	model.ServerConfig
	model.LLMConfig
	model.ChatConfig
	model.ReportConfig
	model.RedisConfig
}

func LoadConfig() (*Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	if config.ReportConfig.BaseURL == "" {
		config.ReportConfig.BaseURL = fmt.Sprintf("http://localhost:%d", config.ServerConfig.Port)
		config.ReportConfig.Local = true
	}

	return &config, nil
}

// ListenAddr is the host:port the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerConfig.Host, c.ServerConfig.Port)
}
