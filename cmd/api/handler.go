package api

import (
	"context"
	"errors"
	"log"

	"makesense-backend/internal/summary/delivery"
	"makesense-backend/internal/summary/repository"
	"makesense-backend/internal/summary/router"
	"makesense-backend/internal/summary/usecase"
	"makesense-backend/pkg/ai"
	"makesense-backend/pkg/config"
	"makesense-backend/pkg/credentials"
	"makesense-backend/pkg/instantdb"
	"makesense-backend/pkg/transcript"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config         *config.Config
	summaryHandler *delivery.Handler
	history        *usecase.HistorySynchronizer
	worker         *usecase.SummarizeWorkerService
	creds          *credentials.Store
}

func NewHandler(cfg *config.Config) *Handler {
	// The repository stays nil when InstantDB is not configured; the router
	// then answers every action with the "Database not initialized" envelope.
	var repo repository.SummaryRepository
	store, err := instantdb.NewClient(cfg.InstantDBAppID)
	switch {
	case errors.Is(err, instantdb.ErrNotConfigured):
		log.Println("[API] InstantDB app ID not configured, persistence disabled")
	case err != nil:
		log.Printf("[API] Failed to initialize InstantDB client: %v", err)
	default:
		repo = repository.NewSummaryRepository(store)
		log.Println("[API] InstantDB client initialized")
	}

	// Stored credentials override the environment so a key set through the
	// CLI survives restarts without editing .env.
	creds, err := credentials.Open(cfg.DataDir)
	if err != nil {
		log.Printf("[API] Failed to open credentials store: %v", err)
	}
	anthropicKey := cfg.AnthropicAPIKey
	if creds != nil {
		if key, err := creds.Get(credentials.KeyAnthropicAPIKey, cfg.AnthropicAPIKey); err == nil {
			anthropicKey = key
		}
	}

	aiService, err := ai.NewSummarizerService(ai.Config{
		Provider:        ai.ProviderType(cfg.AIProvider),
		AnthropicAPIKey: anthropicKey,
		AnthropicModel:  cfg.AnthropicModel,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		OllamaBaseURL:   cfg.OllamaBaseURL,
		OllamaModel:     cfg.OllamaModel,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize AI service: %v", err)
	} else {
		log.Printf("AI service initialized with provider: %s", cfg.AIProvider)
	}

	summaryRouter := router.NewRouter(repo)

	worker := usecase.NewSummarizeWorkerService(repo, transcript.NewClient(), aiService, cfg.SummarizeWorkers)
	worker.Start()
	log.Println("Summarize worker service started")

	history := usecase.NewHistorySynchronizer(summaryRouter)
	if err := history.Load(context.Background()); err != nil {
		log.Printf("[API] Initial history load failed: %v", err)
	}
	if err := history.Start(context.Background()); err != nil {
		log.Printf("[API] Failed to start history refresh: %v", err)
	}

	summaryHandler := delivery.NewHandler(summaryRouter, history, worker)

	return &Handler{
		config:         cfg,
		summaryHandler: summaryHandler,
		history:        history,
		worker:         worker,
		creds:          creds,
	}
}

// Stop shuts down the background workers and the refresh loop.
func (h *Handler) Stop() {
	h.worker.Stop()
	h.history.Stop()
	if h.creds != nil {
		h.creds.Close()
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.summaryHandler)

	return r.Run(addr)
}
