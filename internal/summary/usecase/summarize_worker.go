package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"

	"makesense-backend/internal/summary/domain"
	"makesense-backend/internal/summary/repository"
	"makesense-backend/pkg/ai"
)

// TranscriptFetcher acquires the plain-text transcript of a video. It either
// returns text or fails; caption scraping details live behind it.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// SummarizeJob represents a job to summarize one video.
type SummarizeJob struct {
	VideoID      string `json:"videoId" binding:"required"`
	VideoTitle   string `json:"videoTitle"`
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	// Force regenerates even when a summary for the video already exists.
	Force bool `json:"force"`
}

// SummarizeWorkerService handles background summary generation: transcript
// acquisition, AI summarization, and the upsert into the store.
type SummarizeWorkerService struct {
	repo        repository.SummaryRepository
	transcripts TranscriptFetcher
	summarizer  ai.SummarizerService
	jobQueue    chan SummarizeJob
	workerWg    sync.WaitGroup
	workerCount int
	started     bool
	mu          sync.Mutex
}

// NewSummarizeWorkerService creates a new summarize worker service.
func NewSummarizeWorkerService(
	repo repository.SummaryRepository,
	transcripts TranscriptFetcher,
	summarizer ai.SummarizerService,
	workerCount int,
) *SummarizeWorkerService {
	if workerCount <= 0 {
		workerCount = 3
	}
	return &SummarizeWorkerService{
		repo:        repo,
		transcripts: transcripts,
		summarizer:  summarizer,
		jobQueue:    make(chan SummarizeJob, 100),
		workerCount: workerCount,
	}
}

// Start starts the workers.
func (s *SummarizeWorkerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	for i := 0; i < s.workerCount; i++ {
		s.workerWg.Add(1)
		go s.worker(i)
	}
	s.started = true
	log.Printf("[SummarizeWorker] Started %d workers", s.workerCount)
}

// Stop stops all workers gracefully.
func (s *SummarizeWorkerService) Stop() {
	close(s.jobQueue)
	s.workerWg.Wait()
	log.Println("[SummarizeWorker] All workers stopped")
}

func (s *SummarizeWorkerService) worker(id int) {
	defer s.workerWg.Done()

	for job := range s.jobQueue {
		if _, err := s.RunJob(context.Background(), job); err != nil {
			log.Printf("[SummarizeWorker] job for %s failed: %v", job.VideoID, err)
		}
	}

	log.Printf("[SummarizeWorker] Worker %d stopped", id)
}

// QueueJob adds a job to the queue (non-blocking).
func (s *SummarizeWorkerService) QueueJob(job SummarizeJob) bool {
	select {
	case s.jobQueue <- job:
		return true
	default:
		return false // Queue full
	}
}

// RunJob executes the full pipeline synchronously and returns the generated
// summary text. An existing summary short-circuits the pipeline unless the
// job forces regeneration.
func (s *SummarizeWorkerService) RunJob(ctx context.Context, job SummarizeJob) (string, error) {
	if s.summarizer == nil {
		return "", fmt.Errorf("no summarizer configured")
	}

	if !job.Force && s.repo != nil {
		existing, err := s.repo.GetByVideoID(ctx, job.VideoID)
		if err != nil {
			return "", fmt.Errorf("checking for existing summary: %w", err)
		}
		if existing != nil {
			log.Printf("[SummarizeWorker] summary for %s already cached", job.VideoID)
			return existing.Summary, nil
		}
	}

	transcript, err := s.transcripts.Fetch(ctx, job.VideoID)
	if err != nil {
		return "", fmt.Errorf("fetching transcript: %w", err)
	}

	text, err := s.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return "", fmt.Errorf("summarizing: %w", err)
	}

	if s.repo == nil {
		log.Printf("[SummarizeWorker] persistence disabled, summary for %s not saved", job.VideoID)
		return text, nil
	}

	if _, err := s.repo.Upsert(ctx, domain.SummaryFields{
		VideoID:      job.VideoID,
		VideoTitle:   job.VideoTitle,
		VideoURL:     job.VideoURL,
		ThumbnailURL: job.ThumbnailURL,
		Summary:      text,
		Model:        s.summarizer.ModelName(),
	}); err != nil {
		return "", fmt.Errorf("saving summary: %w", err)
	}

	log.Printf("[SummarizeWorker] Generated summary for %s", job.VideoID)
	return text, nil
}
