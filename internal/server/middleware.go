package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/workdeck/planner/internal/logger"
)

const (
	userIDKey = "userID"
	orgIDKey  = "orgID"

	headerUserID = "X-User-ID"
	headerOrgID  = "X-Org-ID"
)

// identityMiddleware requires the gateway identity headers. Authentication
// itself happens upstream; the planner only scopes data by them.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(headerUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + headerUserID + " header"})
			return
		}
		c.Set(userIDKey, userID)
		c.Set(orgIDKey, c.GetHeader(headerOrgID))
		c.Next()
	}
}

func userID(c *gin.Context) string { return c.GetString(userIDKey) }
func orgID(c *gin.Context) string  { return c.GetString(orgIDKey) }

func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, headerUserID, headerOrgID)
	return cors.New(cfg)
}

// requestLogger logs each request through the application logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
