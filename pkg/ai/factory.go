package ai

import (
	"fmt"

	"makesense-backend/pkg/anthropic"
	"makesense-backend/pkg/gemini"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "anthropic", "gemini", "ollama" or "auto"

	// Anthropic config
	AnthropicAPIKey string
	AnthropicModel  string

	// Gemini config
	GeminiAPIKey string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewSummarizerService creates a SummarizerService based on the config
// This is the factory function - switch AI provider by changing config.Provider
func NewSummarizerService(cfg Config) (SummarizerService, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return anthropic.NewService(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil

	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return gemini.NewGeminiService(cfg.GeminiAPIKey), nil

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	default:
		// Auto: prefer a remote provider when a key is available, with local
		// Ollama as the fallback path.
		ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
		if cfg.AnthropicAPIKey != "" {
			return NewFallbackService(anthropic.NewService(cfg.AnthropicAPIKey, cfg.AnthropicModel), ollama), nil
		}
		if cfg.GeminiAPIKey != "" {
			return NewFallbackService(gemini.NewGeminiService(cfg.GeminiAPIKey), ollama), nil
		}
		return ollama, nil
	}
}
