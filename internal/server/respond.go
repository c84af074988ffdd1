package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workdeck/planner/internal/allocator"
	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/logger"
)

// respondErr maps the engine's error taxonomy onto HTTP statuses. Anything
// unmapped is a 500 with the detail kept server-side.
func respondErr(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, allocator.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": "allocation superseded by a concurrent edit, retry"})
	case apperr.IsDependencyTimeout(err):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
