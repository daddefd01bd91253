package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealscout/bizfinder-pipeline/internal/scraper"
	"github.com/dealscout/bizfinder-pipeline/internal/services"
)

// PipelineHandler handles pipeline management operations
type PipelineHandler struct {
	pipeline *services.Pipeline
	source   *scraper.Service
	cfg      services.PipelineConfig
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(pipeline *services.Pipeline, source *scraper.Service, cfg services.PipelineConfig) *PipelineHandler {
	return &PipelineHandler{pipeline: pipeline, source: source, cfg: cfg}
}

// GetPipelineStatus returns whether the periodic loop is running
func (h *PipelineHandler) GetPipelineStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"is_running": h.pipeline.IsRunning(),
		"timestamp":  time.Now(),
	})
}

// StartPipeline starts the periodic pipeline loop (admin only)
func (h *PipelineHandler) StartPipeline(c *gin.Context) {
	if err := h.pipeline.Start(h.source, h.cfg); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to start pipeline: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pipeline started"})
}

// StopPipeline stops the periodic pipeline loop (admin only)
func (h *PipelineHandler) StopPipeline(c *gin.Context) {
	if err := h.pipeline.Stop(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to stop pipeline: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pipeline stopped"})
}

// RunPipelineOnce runs a single fetch-and-process cycle (admin only)
func (h *PipelineHandler) RunPipelineOnce(c *gin.Context) {
	listings, err := h.source.Fetch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Fetch failed: " + err.Error()})
		return
	}

	result, err := h.pipeline.ProcessBatch(c.Request.Context(), listings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Batch failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pipeline cycle completed",
		"result":  result,
	})
}

// GetScraperHealth reports per-source fetch health
func (h *PipelineHandler) GetScraperHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sources":   h.source.Health().Status(),
		"timestamp": time.Now(),
	})
}
