package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunReallocation handles POST /api/reallocations. It blocks until the run
// commits or the request is cancelled; cancellation rolls the run back.
func (h *Handler) RunReallocation(c *gin.Context) {
	run, err := h.engine.Reallocate(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListReallocations handles GET /api/reallocations.
func (h *Handler) ListReallocations(c *gin.Context) {
	runs, err := h.engine.ListRuns(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}
