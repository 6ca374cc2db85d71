package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-haiku-4-5-20251001"
	apiVersion     = "2023-06-01"

	// Transcripts are cut to keep the request inside the model's context.
	maxTranscriptChars = 30000
)

// Service summarizes video transcripts via the Anthropic Messages API.
type Service struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewService creates an Anthropic summarizer. model may be empty to use the
// default.
func NewService(apiKey, model string) *Service {
	if model == "" {
		model = defaultModel
	}
	return &Service{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ModelName implements ai.SummarizerService.
func (s *Service) ModelName() string { return s.model }

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// truncateTranscript cuts the transcript to the context budget without
// splitting a multi-byte rune; captions are frequently non-ASCII.
func truncateTranscript(s string) string {
	if len(s) <= maxTranscriptChars {
		return s
	}
	cut := maxTranscriptChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Summarize implements ai.SummarizerService.
func (s *Service) Summarize(ctx context.Context, transcript string) (string, error) {
	transcript = truncateTranscript(transcript)

	payload := messagesRequest{
		Model:     s.model,
		MaxTokens: 1000,
		Messages:  []message{{Role: "user", Content: summaryPrompt(transcript)}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling messages request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var result messagesResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding messages response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error != nil && result.Error.Message != "" {
			return "", fmt.Errorf("anthropic API error: %s", result.Error.Message)
		}
		return "", fmt.Errorf("anthropic API error: status %d", resp.StatusCode)
	}

	if len(result.Content) == 0 || result.Content[0].Text == "" {
		return "", fmt.Errorf("no summary returned")
	}
	return result.Content[0].Text, nil
}

func summaryPrompt(transcript string) string {
	return fmt.Sprintf(`You are world class at insightfully summarising youtube videos. The summary should give clear, engaging insight into the video. Be precise, avoid being abstract, and name the people involved rather than saying "the speaker".

Format:
* Emphasize key points with emojis and bold text to distinguish sections.
* Organize content with bullet points or brief paragraphs under flexible headings tailored to the video's content.
* Every heading starts with an emoji. Pick headings that fit the video (for example: 📦 Features / 👍 Pros / 👎 Cons for a product review, 🥘 Ingredients / 📝 How to Cook for a cooking video, 📚 Main Topic / 🧠 Concept Explanations for an educational one) — invent your own when none fit.
* Base the summary on the transcript only; no outside information.

Transcript:
%s`, transcript)
}
