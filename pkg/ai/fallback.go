package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes summarization to a primary provider and falls back
// to a secondary one on connection or quota failures.
type FallbackService struct {
	primary   SummarizerService
	secondary SummarizerService
}

// NewFallbackService creates a new fallback service over both providers.
func NewFallbackService(primary, secondary SummarizerService) *FallbackService {
	return &FallbackService{
		primary:   primary,
		secondary: secondary,
	}
}

// ModelName implements SummarizerService; the primary provider names the model.
func (f *FallbackService) ModelName() string {
	if f.primary != nil {
		return f.primary.ModelName()
	}
	if f.secondary != nil {
		return f.secondary.ModelName()
	}
	return ""
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors
	if _, ok := err.(net.Error); ok {
		return true
	}

	// Check for common connection error messages
	errStr := err.Error()
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"EOF",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"RESOURCE_EXHAUSTED",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// Summarize tries the primary provider first and falls back to the secondary
// on connection or quota errors.
func (f *FallbackService) Summarize(ctx context.Context, transcript string) (string, error) {
	if f.primary != nil {
		result, err := f.primary.Summarize(ctx, transcript)
		if err == nil {
			return result, nil
		}

		if f.secondary == nil {
			return "", err
		}
		if isConnectionError(err) || isQuotaError(err) {
			log.Printf("[AI] primary provider failed: %v, falling back", err)
		} else {
			log.Printf("[AI] primary provider error: %v, trying fallback anyway", err)
		}
	}

	if f.secondary != nil {
		result, err := f.secondary.Summarize(ctx, transcript)
		if err == nil {
			return result, nil
		}
		return "", fmt.Errorf("fallback summarization failed: %w", err)
	}

	return "", fmt.Errorf("no AI provider available for summarization")
}
