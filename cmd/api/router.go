package api

import (
	"net/http"

	"makesense-backend/internal/summary/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, summaryHandler *delivery.Handler) {
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Extension message protocol: one endpoint, action-tagged requests
		api.POST("/message", summaryHandler.HandleMessage)

		// Background summarization
		api.POST("/summarize", summaryHandler.QueueSummarize)

		// History view
		history := api.Group("/history")
		{
			history.GET("", summaryHandler.GetHistory)
			history.DELETE("/:id", summaryHandler.DeleteHistory)
			history.POST("/clear", summaryHandler.ClearHistory)
		}
	}
}
