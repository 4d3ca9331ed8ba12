package api

import (
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/alloc"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine  *alloc.Engine
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(engine *alloc.Engine, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		engine:  engine,
		webpush: webpushOptions,
	}
}

// writeEngineError maps engine error kinds to HTTP statuses.
func writeEngineError(c *gin.Context, err error) {
	switch alloc.KindOf(err) {
	case alloc.KindNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case alloc.KindInvalidState:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case alloc.KindInvalidInput:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "allocation engine failure"})
	}
}
