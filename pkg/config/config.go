package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	InstantDBAppID   string
	AIProvider       string
	AnthropicAPIKey  string
	AnthropicModel   string
	GeminiAPIKey     string
	OllamaBaseURL    string
	OllamaModel      string
	DataDir          string
	SummarizeWorkers int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	workers := 3
	if w := os.Getenv("SUMMARIZE_WORKERS"); w != "" {
		if parsed, err := strconv.Atoi(w); err == nil && parsed > 0 {
			workers = parsed
		}
	}

	return &Config{
		Port:             getEnv("PORT", "8765"),
		InstantDBAppID:   getEnv("INSTANTDB_APP_ID", ""),
		AIProvider:       getEnv("AI_PROVIDER", "auto"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama3"),
		DataDir:          getEnv("DATA_DIR", defaultDataDir()),
		SummarizeWorkers: workers,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".makesense"
	}
	return filepath.Join(home, ".makesense")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
