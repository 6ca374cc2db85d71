package delivery

import (
	"net/http"

	"makesense-backend/internal/summary/domain"
	"makesense-backend/internal/summary/router"
	"makesense-backend/internal/summary/usecase"
	"makesense-backend/pkg/markdown"

	"github.com/gin-gonic/gin"
)

const previewLength = 150

// Handler exposes the message protocol and the history view over HTTP.
type Handler struct {
	router  *router.Router
	history *usecase.HistorySynchronizer
	worker  *usecase.SummarizeWorkerService
}

// NewHandler creates a new Handler.
func NewHandler(rt *router.Router, history *usecase.HistorySynchronizer, worker *usecase.SummarizeWorkerService) *Handler {
	return &Handler{
		router:  rt,
		history: history,
		worker:  worker,
	}
}

// POST /api/message
// HandleMessage dispatches one action-tagged request from the extension and
// returns the protocol envelope. The envelope itself carries success/failure;
// the HTTP status is 200 either way so the foreground only parses one shape.
func (h *Handler) HandleMessage(c *gin.Context) {
	var req router.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	resp := h.router.Dispatch(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp.Envelope())
}

// POST /api/summarize
// QueueSummarize queues a video for background summarization.
func (h *Handler) QueueSummarize(c *gin.Context) {
	var job usecase.SummarizeJob
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.worker.QueueJob(job) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "summarize queue is full"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}

// historyItem is one rendered entry of the history view.
type historyItem struct {
	domain.Summary
	HTML    string `json:"html"`
	Preview string `json:"preview"`
}

// GET /api/history
// GetHistory returns the synchronized list in display order, with the summary
// body rendered for the view.
func (h *Handler) GetHistory(c *gin.Context) {
	summaries := h.history.Snapshot()

	items := make([]historyItem, 0, len(summaries))
	for _, s := range summaries {
		html, err := markdown.Render(s.Summary)
		if err != nil {
			html = ""
		}
		items = append(items, historyItem{
			Summary: s,
			HTML:    html,
			Preview: markdown.Preview(s.Summary, previewLength),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"state":     h.history.State(),
		"summaries": items,
	})
}

// DELETE /api/history/:id
func (h *Handler) DeleteHistory(c *gin.Context) {
	id := c.Param("id")
	if err := h.history.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// POST /api/history/clear
func (h *Handler) ClearHistory(c *gin.Context) {
	if err := h.history.ClearAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
