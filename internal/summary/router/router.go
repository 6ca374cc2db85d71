// Package router dispatches action-tagged requests from the non-privileged
// extension context to the store operations, returning a uniform
// success/error envelope. Nothing ever panics or throws across this boundary.
package router

import (
	"context"
	"fmt"
	"log"

	"makesense-backend/internal/summary/domain"
	"makesense-backend/internal/summary/repository"
)

// Actions understood by the router.
const (
	ActionSaveSummary         = "saveSummary"
	ActionQuerySummaries      = "querySummaries"
	ActionDeleteSummary       = "deleteSummary"
	ActionGetSummaryByVideoID = "getSummaryByVideoId"
)

// errNotInitialized is the user-legible message for a missing store
// configuration. Every action reports it without attempting a network call.
const errNotInitialized = "Database not initialized"

// Request is one action-tagged message from the foreground context.
type Request struct {
	Action  string                `json:"action"`
	Data    *domain.SummaryFields `json:"data,omitempty"`
	ID      string                `json:"id,omitempty"`
	VideoID string                `json:"videoId,omitempty"`
}

// Response is the uniform envelope. Exactly one success-shaped field is
// populated per action; Error is always a plain message string.
type Response struct {
	Action    string
	Success   bool
	Result    interface{}
	Summaries []domain.Summary
	Summary   *domain.Summary
	Error     string
}

// Envelope renders the response in the wire shape of the message protocol.
// getSummaryByVideoId carries an explicit null summary for not-found.
func (r Response) Envelope() map[string]interface{} {
	envelope := map[string]interface{}{"success": r.Success}
	if !r.Success {
		envelope["error"] = r.Error
		return envelope
	}
	switch r.Action {
	case ActionQuerySummaries:
		summaries := r.Summaries
		if summaries == nil {
			summaries = []domain.Summary{}
		}
		envelope["summaries"] = summaries
	case ActionGetSummaryByVideoID:
		envelope["summary"] = r.Summary
	default:
		envelope["result"] = r.Result
	}
	return envelope
}

// Router is the privileged boundary between the foreground context and the
// store. A nil repository means the store could not be initialized; every
// dispatch then fails with the configuration error.
type Router struct {
	repo repository.SummaryRepository
}

// NewRouter creates a router over the given repository. repo may be nil when
// the store configuration is absent.
func NewRouter(repo repository.SummaryRepository) *Router {
	return &Router{repo: repo}
}

// Dispatch routes one request to the matching store operation. It never
// panics; failures are converted to the error envelope.
func (rt *Router) Dispatch(ctx context.Context, req Request) (resp Response) {
	resp.Action = req.Action
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Router] panic in %s: %v", req.Action, r)
			resp = failure(req.Action, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if rt.repo == nil {
		return failure(req.Action, errNotInitialized)
	}

	switch req.Action {
	case ActionSaveSummary:
		return rt.saveSummary(ctx, req)
	case ActionQuerySummaries:
		return rt.querySummaries(ctx, req)
	case ActionDeleteSummary:
		return rt.deleteSummary(ctx, req)
	case ActionGetSummaryByVideoID:
		return rt.getSummaryByVideoID(ctx, req)
	default:
		return failure(req.Action, fmt.Sprintf("unknown action: %s", req.Action))
	}
}

func (rt *Router) saveSummary(ctx context.Context, req Request) Response {
	if req.Data == nil || req.Data.VideoID == "" {
		return failure(req.Action, "saveSummary requires data with a videoId")
	}
	ack, err := rt.repo.Upsert(ctx, *req.Data)
	if err != nil {
		log.Printf("[Router] save failed: %v", err)
		return failure(req.Action, err.Error())
	}
	return Response{Action: req.Action, Success: true, Result: ack}
}

func (rt *Router) querySummaries(ctx context.Context, req Request) Response {
	summaries, err := rt.repo.List(ctx)
	if err != nil {
		log.Printf("[Router] query failed: %v", err)
		return failure(req.Action, err.Error())
	}
	return Response{Action: req.Action, Success: true, Summaries: summaries}
}

func (rt *Router) deleteSummary(ctx context.Context, req Request) Response {
	if req.ID == "" {
		return failure(req.Action, "deleteSummary requires an id")
	}
	ack, err := rt.repo.Delete(ctx, req.ID)
	if err != nil {
		log.Printf("[Router] delete failed: %v", err)
		return failure(req.Action, err.Error())
	}
	return Response{Action: req.Action, Success: true, Result: ack}
}

// getSummaryByVideoID returns an explicit null summary when no record
// matches; logical absence is not an error at this boundary.
func (rt *Router) getSummaryByVideoID(ctx context.Context, req Request) Response {
	if req.VideoID == "" {
		return failure(req.Action, "getSummaryByVideoId requires a videoId")
	}
	summary, err := rt.repo.GetByVideoID(ctx, req.VideoID)
	if err != nil {
		log.Printf("[Router] get by videoId failed: %v", err)
		return failure(req.Action, err.Error())
	}
	return Response{Action: req.Action, Success: true, Summary: summary}
}

func failure(action, message string) Response {
	return Response{Action: action, Success: false, Error: message}
}
