package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
	"github.com/dealscout/bizfinder-pipeline/internal/repository"
)

// OpportunitiesHandler serves the deduplicated opportunity entities and
// their event history.
type OpportunitiesHandler struct {
	repos *repository.Repositories
}

// NewOpportunitiesHandler creates a new opportunities handler
func NewOpportunitiesHandler(repos *repository.Repositories) *OpportunitiesHandler {
	return &OpportunitiesHandler{repos: repos}
}

// GetOpportunities lists entities, filterable by status and minimum score
func (h *OpportunitiesHandler) GetOpportunities(c *gin.Context) {
	filters := repository.EntityFilters{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}

	if statusParam := c.Query("status"); statusParam != "" {
		for _, s := range strings.Split(statusParam, ",") {
			filters.Status = append(filters.Status, models.EntityStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	} else {
		filters.Status = []models.EntityStatus{models.EntityActive, models.EntityStale}
	}

	if minScore := c.Query("min_score"); minScore != "" {
		v, err := strconv.ParseFloat(minScore, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_score: " + minScore})
			return
		}
		filters.MinScore = &v
	}

	entities, err := h.repos.Entity.GetAll(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list opportunities: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"opportunities": entities,
		"count":         len(entities),
	})
}

// GetOpportunity returns one entity by ID
func (h *OpportunitiesHandler) GetOpportunity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid opportunity ID"})
		return
	}

	entity, err := h.repos.Entity.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		return
	}

	c.JSON(http.StatusOK, entity)
}

// GetOpportunityEvents returns the event history for one entity
func (h *OpportunitiesHandler) GetOpportunityEvents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid opportunity ID"})
		return
	}

	events, err := h.repos.Event.GetByEntity(id, parseIntQuery(c, "limit", 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get events: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

// GetRecentEvents returns recent events across all entities
func (h *OpportunitiesHandler) GetRecentEvents(c *gin.Context) {
	filters := repository.EventFilters{
		Limit: parseIntQuery(c, "limit", 100),
	}

	if kindParam := c.Query("kind"); kindParam != "" {
		for _, k := range strings.Split(kindParam, ",") {
			filters.Kinds = append(filters.Kinds, models.EventKind(strings.ToUpper(strings.TrimSpace(k))))
		}
	}
	if sinceParam := c.Query("since"); sinceParam != "" {
		since, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since timestamp, want RFC3339"})
			return
		}
		filters.Since = &since
	}

	events, err := h.repos.Event.GetRecent(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get events: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
