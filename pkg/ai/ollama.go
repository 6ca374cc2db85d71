package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaService implements SummarizerService using a local Ollama LLM.
type OllamaService struct {
	baseURL string
	model   string
}

// NewOllamaService creates a new Ollama service.
func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaService{baseURL: baseURL, model: model}
}

// ModelName implements SummarizerService.
func (o *OllamaService) ModelName() string { return o.model }

// Summarize implements SummarizerService.
func (o *OllamaService) Summarize(ctx context.Context, transcript string) (string, error) {
	url := o.baseURL + "/api/generate"

	prompt := fmt.Sprintf(`You summarise youtube video transcripts. Be precise and concrete; name the people involved rather than saying "the speaker".
- Emphasize key points with emojis and bold text.
- Use bullet points under flexible headings tailored to the video's content; every heading starts with an emoji.
- Base the summary on the transcript only.

Transcript:
%s`, transcript)

	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.3,
			"num_predict": 1000,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Response, nil
}
