package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"makesense-backend/internal/summary/domain"
	"makesense-backend/internal/summary/router"

	"github.com/robfig/cron/v3"
)

// SyncState is the display state of the history view.
type SyncState string

const (
	StateLoading   SyncState = "loading"
	StatePopulated SyncState = "populated"
	StateEmpty     SyncState = "empty"
)

// refreshSpec drives the background refresh of the history list.
const refreshSpec = "@every 30s"

// HistorySynchronizer maintains a local in-memory list of summary records:
// fetched on load, refreshed on a fixed interval, sorted by createdAt
// descending. The remote store stays the source of truth; this list is a
// disposable cache.
type HistorySynchronizer struct {
	router *router.Router
	cron   *cron.Cron

	mu        sync.Mutex
	summaries []domain.Summary
	state     SyncState
	started   bool
}

// NewHistorySynchronizer creates a synchronizer over the shared router.
func NewHistorySynchronizer(rt *router.Router) *HistorySynchronizer {
	return &HistorySynchronizer{
		router: rt,
		cron:   cron.New(),
		state:  StateLoading,
	}
}

// Load fetches the current record set. On success the list is sorted and the
// state becomes Populated or Empty; on failure the view degrades to the empty
// state and the cause is returned for logging.
func (h *HistorySynchronizer) Load(ctx context.Context) error {
	resp := h.router.Dispatch(ctx, router.Request{Action: router.ActionQuerySummaries})
	if !resp.Success {
		h.mu.Lock()
		h.summaries = nil
		h.state = StateEmpty
		h.mu.Unlock()
		return fmt.Errorf("loading summaries: %s", resp.Error)
	}

	h.setSummaries(resp.Summaries)
	return nil
}

// Start begins the background refresh. A failed refresh is swallowed (logged
// only) so a visible view is not disrupted by a transient backend hiccup.
func (h *HistorySynchronizer) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return nil
	}

	if _, err := h.cron.AddFunc(refreshSpec, func() { h.refresh(ctx) }); err != nil {
		return fmt.Errorf("scheduling history refresh: %w", err)
	}
	h.cron.Start()
	h.started = true
	log.Printf("[HistorySync] background refresh scheduled (%s)", refreshSpec)
	return nil
}

// Stop halts the background refresh.
func (h *HistorySynchronizer) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started {
		return
	}
	h.cron.Stop()
	h.started = false
}

func (h *HistorySynchronizer) refresh(ctx context.Context) {
	resp := h.router.Dispatch(ctx, router.Request{Action: router.ActionQuerySummaries})
	if !resp.Success {
		log.Printf("[HistorySync] refresh failed: %s", resp.Error)
		return
	}
	h.setSummaries(resp.Summaries)
}

func (h *HistorySynchronizer) setSummaries(summaries []domain.Summary) {
	sorted := make([]domain.Summary, len(summaries))
	copy(sorted, summaries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})

	h.mu.Lock()
	h.summaries = sorted
	if len(sorted) == 0 {
		h.state = StateEmpty
	} else {
		h.state = StatePopulated
	}
	h.mu.Unlock()
}

// Snapshot returns a copy of the current list in display order.
func (h *HistorySynchronizer) Snapshot() []domain.Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Summary, len(h.summaries))
	copy(out, h.summaries)
	return out
}

// State returns the current display state.
func (h *HistorySynchronizer) State() SyncState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Delete removes one record. The remote delete happens first; the local list
// is compacted only after it succeeds, so a failure leaves the view unchanged.
func (h *HistorySynchronizer) Delete(ctx context.Context, id string) error {
	resp := h.router.Dispatch(ctx, router.Request{Action: router.ActionDeleteSummary, ID: id})
	if !resp.Success {
		return fmt.Errorf("deleting summary %s: %s", id, resp.Error)
	}

	h.mu.Lock()
	kept := h.summaries[:0]
	for _, s := range h.summaries {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	h.summaries = kept
	if len(kept) == 0 {
		h.state = StateEmpty
	}
	h.mu.Unlock()
	return nil
}

// ClearAll deletes every record sequentially, in list order. There is no
// batch primitive and no rollback: a failure partway stops the sweep and
// leaves both the remote store and the local list partially cleared.
func (h *HistorySynchronizer) ClearAll(ctx context.Context) error {
	for _, s := range h.Snapshot() {
		if err := h.Delete(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}
