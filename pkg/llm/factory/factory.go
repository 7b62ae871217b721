package factory

import (
	"context"
	"fmt"

	"kb-assistant-be/pkg/llm"
	"kb-assistant-be/pkg/llm/gemini"
	"kb-assistant-be/pkg/llm/ollama"
)

type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

func NewLLMProvider(ctx context.Context, s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "gemini", "":
		p, err := gemini.NewGeminiProvider(ctx, s.APIKey, s.Model, "")
		if err != nil {
			return nil, err
		}
		return p, nil
	case "ollama":
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
