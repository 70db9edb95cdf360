package llm

import (
	"context"
	"fmt"
	"restaurant_chat/src/model"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/ollama/ollama/api"
)

const (
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderDeepSeek = "deepseek"
	ProviderArk      = "ark"
)

const defaultOllamaURL = "http://localhost:11434"

// NewChatModel builds the tool-calling chat model selected by config.Provider
func NewChatModel(ctx context.Context, config model.LLMConfig) (einomodel.ToolCallingChatModel, error) {
	temperature := config.Temperature

	switch strings.ToLower(config.Provider) {
	case "", ProviderOpenAI:
		modelConfig := &openai.ChatModelConfig{
			APIKey:      config.Credential(),
			BaseURL:     config.BaseURL,
			Model:       config.Model,
			Temperature: &temperature,
			Timeout:     config.Timeout(),
		}
		if config.MaxTokens > 0 {
			maxTokens := config.MaxTokens
			modelConfig.MaxTokens = &maxTokens
		}
		chatModel, err := openai.NewChatModel(ctx, modelConfig)
		if err != nil {
			return nil, fmt.Errorf("error creating openai chat model: %w", err)
		}
		return chatModel, nil

	case ProviderOllama:
		baseURL := config.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		options := &api.Options{Temperature: temperature}
		if config.MaxTokens > 0 {
			options.NumPredict = config.MaxTokens
		}
		chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   config.Model,
			Timeout: config.Timeout(),
			Options: options,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating ollama chat model: %w", err)
		}
		return chatModel, nil

	case ProviderDeepSeek:
		chatModel, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:      config.Credential(),
			BaseURL:     config.BaseURL,
			Model:       config.Model,
			Temperature: temperature,
			MaxTokens:   config.MaxTokens,
			Timeout:     config.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("error creating deepseek chat model: %w", err)
		}
		return chatModel, nil

	case ProviderArk:
		timeout := config.Timeout()
		modelConfig := &ark.ChatModelConfig{
			APIKey:      config.Credential(),
			BaseURL:     config.BaseURL,
			Model:       config.Model,
			Temperature: &temperature,
			Timeout:     &timeout,
		}
		if config.MaxTokens > 0 {
			maxTokens := config.MaxTokens
			modelConfig.MaxTokens = &maxTokens
		}
		chatModel, err := ark.NewChatModel(ctx, modelConfig)
		if err != nil {
			return nil, fmt.Errorf("error creating ark chat model: %w", err)
		}
		return chatModel, nil
	}

	return nil, fmt.Errorf("unsupported llm provider %q", config.Provider)
}
