package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"makesense-backend/internal/summary/repository"
	"makesense-backend/internal/summary/router"
	"makesense-backend/internal/summary/usecase"
	"makesense-backend/pkg/ai"
	"makesense-backend/pkg/config"
	"makesense-backend/pkg/credentials"
	"makesense-backend/pkg/instantdb"
	"makesense-backend/pkg/markdown"
	"makesense-backend/pkg/transcript"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// parseVideoID accepts a bare 11-character video ID, a watch URL, or a
// youtu.be short link.
func parseVideoID(arg string) (string, error) {
	if !strings.Contains(arg, "/") && !strings.Contains(arg, "?") {
		return arg, nil
	}

	u, err := url.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("invalid video URL: %w", err)
	}
	if u.Host == "youtu.be" {
		return strings.TrimPrefix(u.Path, "/"), nil
	}
	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("could not extract a video ID from %q", arg)
}

// newRepository opens the InstantDB-backed repository for CLI use. A missing
// app ID is not fatal here; commands degrade to unpersisted operation.
func newRepository(cfg *config.Config) repository.SummaryRepository {
	store, err := instantdb.NewClient(cfg.InstantDBAppID)
	if err != nil {
		if !errors.Is(err, instantdb.ErrNotConfigured) {
			printWarning("InstantDB unavailable: %v", err)
		}
		return nil
	}
	return repository.NewSummaryRepository(store)
}

func newSummarizer(cfg *config.Config) (ai.SummarizerService, error) {
	anthropicKey := cfg.AnthropicAPIKey
	if creds, err := credentials.Open(cfg.DataDir); err == nil {
		if key, err := creds.Get(credentials.KeyAnthropicAPIKey, cfg.AnthropicAPIKey); err == nil {
			anthropicKey = key
		}
		creds.Close()
	}

	return ai.NewSummarizerService(ai.Config{
		Provider:        ai.ProviderType(cfg.AIProvider),
		AnthropicAPIKey: anthropicKey,
		AnthropicModel:  cfg.AnthropicModel,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		OllamaBaseURL:   cfg.OllamaBaseURL,
		OllamaModel:     cfg.OllamaModel,
	})
}

// --- summarize ---

var summarizeCmd = &cobra.Command{
	Use:   "summarize <url|video-id>",
	Short: "Summarize a YouTube video and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		title, _ := cmd.Flags().GetString("title")

		videoID, err := parseVideoID(args[0])
		if err != nil {
			return err
		}

		cfg := config.Load()
		log.SetOutput(os.Stderr)

		summarizer, err := newSummarizer(cfg)
		if err != nil {
			return fmt.Errorf("initializing AI service: %w", err)
		}

		worker := usecase.NewSummarizeWorkerService(
			newRepository(cfg), transcript.NewClient(), summarizer, 1)

		printStep("Summarizing %s with %s...", videoID, summarizer.ModelName())
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		text, err := worker.RunJob(ctx, usecase.SummarizeJob{
			VideoID:    videoID,
			VideoTitle: title,
			VideoURL:   "https://www.youtube.com/watch?v=" + videoID,
			Force:      force,
		})
		if err != nil {
			return err
		}

		fmt.Println(text)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().Bool("force", false, "regenerate even when a summary exists")
	summarizeCmd.Flags().String("title", "", "video title to store with the summary")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored summaries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		full, _ := cmd.Flags().GetBool("full")

		cfg := config.Load()
		log.SetOutput(os.Stderr)

		sync := usecase.NewHistorySynchronizer(router.NewRouter(newRepository(cfg)))
		if err := sync.Load(context.Background()); err != nil {
			return err
		}

		summaries := sync.Snapshot()
		if len(summaries) == 0 {
			fmt.Println("No summaries found.")
			return nil
		}

		for _, s := range summaries {
			created := time.UnixMilli(s.CreatedAt).Format("2006-01-02 15:04")
			title := s.VideoTitle
			if title == "" {
				title = s.VideoID
			}
			fmt.Printf("%s  %s  %s\n", colorize(colorCyan, shortID(s.ID)), created, colorize(colorBold, title))
			if full {
				fmt.Println(s.Summary)
				fmt.Println()
			} else {
				fmt.Printf("  %s\n", markdown.Preview(s.Summary, 120))
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Bool("full", false, "print full summaries instead of previews")
}

// --- key ---

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored Anthropic API key",
}

var keySetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Store the Anthropic API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		creds, err := credentials.Open(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("opening credentials store: %w", err)
		}
		defer creds.Close()

		if err := creds.Set(credentials.KeyAnthropicAPIKey, args[0]); err != nil {
			return err
		}
		printSuccess("Anthropic API key stored")
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show whether an Anthropic API key is configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		creds, err := credentials.Open(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("opening credentials store: %w", err)
		}
		defer creds.Close()

		key, err := creds.Get(credentials.KeyAnthropicAPIKey, cfg.AnthropicAPIKey)
		if err != nil {
			return err
		}
		if key == "" {
			printWarning("No Anthropic API key configured")
			return nil
		}

		masked := key
		if len(masked) > 8 {
			masked = masked[:4] + "..." + masked[len(masked)-4:]
		}
		printStatus("Anthropic API key", "%s", masked)
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyShowCmd)
}
