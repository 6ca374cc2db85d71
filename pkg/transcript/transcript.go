// Package transcript fetches plain-text transcripts for videos through the
// Innertube player API: watch page -> API key -> caption track -> caption XML.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.youtube.com"

var apiKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"INNERTUBE_API_KEY":"([^"]+)"`),
	regexp.MustCompile(`INNERTUBE_API_KEY\\":\\"([^\\"]+)\\"`),
}

// Client fetches transcripts.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a transcript client.
func NewClient() *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

type playerResponse struct {
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayerCaptionsTracklistRenderer struct {
		CaptionTracks []captionTrack `json:"captionTracks"`
	} `json:"playerCaptionsTracklistRenderer"`
}

// Fetch returns the transcript of the video as plain text, or fails.
func (c *Client) Fetch(ctx context.Context, videoID string) (string, error) {
	html, err := c.get(ctx, fmt.Sprintf("%s/watch?v=%s", c.baseURL, videoID))
	if err != nil {
		return "", fmt.Errorf("fetching watch page: %w", err)
	}

	apiKey, err := extractAPIKey(html)
	if err != nil {
		return "", err
	}

	tracks, err := c.captionTracks(ctx, apiKey, videoID)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", fmt.Errorf("no captions found for this video")
	}

	track := pickTrack(tracks)
	raw, err := c.get(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("fetching captions: %w", err)
	}

	return cleanCaptionXML(string(raw)), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) captionTracks(ctx context.Context, apiKey, videoID string) ([]captionTrack, error) {
	var reqBody playerRequest
	reqBody.Context.Client.ClientName = "ANDROID"
	reqBody.Context.Client.ClientVersion = "19.09.37"
	reqBody.VideoID = videoID

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/youtubei/v1/player?key=%s", c.baseURL, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching player data: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching player data: status %d", resp.StatusCode)
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("decoding player data: %w", err)
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		tracks = player.PlayerCaptionsTracklistRenderer.CaptionTracks
	}
	return tracks, nil
}

func extractAPIKey(html []byte) (string, error) {
	for _, pattern := range apiKeyPatterns {
		if m := pattern.FindSubmatch(html); m != nil {
			return string(m[1]), nil
		}
	}
	return "", fmt.Errorf("could not find Innertube API key")
}

// pickTrack prefers English captions, falling back to the first track.
func pickTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if t.LanguageCode == "en" {
			return t
		}
	}
	return tracks[0]
}

var (
	xmlTag     = regexp.MustCompile(`<[^>]+>`)
	whitespace = regexp.MustCompile(`\s+`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// cleanCaptionXML flattens caption XML into plain text.
func cleanCaptionXML(raw string) string {
	text := xmlTag.ReplaceAllString(raw, " ")
	text = entityReplacer.Replace(text)
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
