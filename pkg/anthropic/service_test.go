package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewService("test-key", "")
	s.baseURL = srv.URL
	return s
}

func TestSummarizeSendsMessagesRequest(t *testing.T) {
	var got messagesRequest
	var gotHeaders http.Header
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotHeaders = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": "the summary"}},
		})
	})

	text, err := s.Summarize(context.Background(), "a transcript")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if text != "the summary" {
		t.Errorf("summary = %q", text)
	}

	if gotHeaders.Get("x-api-key") != "test-key" {
		t.Errorf("x-api-key = %q", gotHeaders.Get("x-api-key"))
	}
	if gotHeaders.Get("anthropic-version") != apiVersion {
		t.Errorf("anthropic-version = %q", gotHeaders.Get("anthropic-version"))
	}
	if got.Model != defaultModel {
		t.Errorf("model = %q", got.Model)
	}
	if got.MaxTokens != 1000 {
		t.Errorf("max_tokens = %d", got.MaxTokens)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if !strings.Contains(got.Messages[0].Content, "a transcript") {
		t.Error("prompt does not include the transcript")
	}
}

func TestSummarizeTruncatesLongTranscripts(t *testing.T) {
	var prompt string
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Messages[0].Content
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": "ok"}},
		})
	})

	long := strings.Repeat("x", maxTranscriptChars+5000)
	if _, err := s.Summarize(context.Background(), long); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if strings.Count(prompt, "x") != maxTranscriptChars {
		t.Errorf("transcript in prompt has %d chars, want %d", strings.Count(prompt, "x"), maxTranscriptChars)
	}
}

func TestTruncateTranscriptKeepsRunesWhole(t *testing.T) {
	// The budget boundary lands inside the 4-byte emoji.
	in := strings.Repeat("x", maxTranscriptChars-2) + "🥘 end"
	got := truncateTranscript(in)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated transcript is not valid UTF-8: ...%q", got[len(got)-8:])
	}
	if len(got) > maxTranscriptChars {
		t.Errorf("len = %d, want at most %d", len(got), maxTranscriptChars)
	}
	if strings.Contains(got, "🥘") {
		t.Error("a rune split by the budget was kept")
	}

	if short := truncateTranscript("short"); short != "short" {
		t.Errorf("short transcript changed: %q", short)
	}
}

func TestSummarizeSurfacesAPIError(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid x-api-key"},
		})
	})

	_, err := s.Summarize(context.Background(), "t")
	if err == nil {
		t.Fatal("Summarize succeeded on a 401")
	}
	if !strings.Contains(err.Error(), "invalid x-api-key") {
		t.Errorf("error = %v, want the API message", err)
	}
}

func TestSummarizeEmptyContent(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	})

	if _, err := s.Summarize(context.Background(), "t"); err == nil {
		t.Fatal("Summarize succeeded with no content")
	}
}

func TestModelOverride(t *testing.T) {
	s := NewService("k", "claude-3-5-haiku-latest")
	if s.ModelName() != "claude-3-5-haiku-latest" {
		t.Errorf("ModelName = %q", s.ModelName())
	}
	if NewService("k", "").ModelName() != defaultModel {
		t.Errorf("default ModelName = %q", NewService("k", "").ModelName())
	}
}
