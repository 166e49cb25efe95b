package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"projlens/internal/repository"
)

// RunHandler exposes the pipeline run ledger so operators can watch
// progress and review past runs.
type RunHandler struct {
	runs *repository.RunRepository
}

// NewRunHandler creates a new run handler.
func NewRunHandler(runs *repository.RunRepository) *RunHandler {
	return &RunHandler{runs: runs}
}

// ListRuns returns runs newest first. Supports limit and offset query
// parameters; limit defaults to 20 and caps at 100.
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	runs, err := h.runs.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun returns one run by ID.
func (h *RunHandler) GetRun(c *gin.Context) {
	id := c.Param("id")

	run, err := h.runs.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}

	c.JSON(http.StatusOK, run)
}
