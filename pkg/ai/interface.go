package ai

import "context"

// SummarizerService is the interface for transcript summarization.
// Implement this interface to add new AI providers (Anthropic, Gemini,
// Ollama, ...).
type SummarizerService interface {
	Summarize(ctx context.Context, transcript string) (string, error)
	// ModelName identifies the generation model, recorded on saved summaries.
	ModelName() string
}

// ProviderType represents the AI provider type.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderGemini    ProviderType = "gemini"
	ProviderOllama    ProviderType = "ollama"
	ProviderAuto      ProviderType = "auto"
)
