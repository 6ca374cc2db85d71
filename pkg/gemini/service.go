package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

const model = "gemini-2.5-flash"

const maxTranscriptChars = 30000

// GeminiService summarizes video transcripts via the Gemini generateContent API.
type GeminiService struct {
	ApiKey  string
	baseURL string
}

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{
		ApiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com",
	}
}

// ModelName implements ai.SummarizerService.
func (g *GeminiService) ModelName() string { return model }

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
func (g *GeminiService) Summarize(ctx context.Context, transcript string) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, model, g.ApiKey)

	transcript = truncateTranscript(transcript)

	prompt := fmt.Sprintf(`You are world class at insightfully summarising youtube videos. Be precise and concrete; name the people involved rather than saying "the speaker".
- Emphasize key points with emojis and bold text.
- Use bullet points under flexible headings tailored to the video's content; every heading starts with an emoji.
- Base the summary on the transcript only.

Transcript:
%s`, transcript)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	// Parse summary from response
	if c, ok := result["candidates"].([]interface{}); ok && len(c) > 0 {
		if cand, ok := c[0].(map[string]interface{}); ok {
			if content, ok := cand["content"].(map[string]interface{}); ok {
				if parts, ok := content["parts"].([]interface{}); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]interface{}); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}
	return "", fmt.Errorf("no summary returned")
}
