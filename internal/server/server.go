// Package server exposes the planning engine over HTTP. Routes are grouped
// under /api/v1/planner and scoped to the caller identified by the gateway
// headers X-User-ID and X-Org-ID.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workdeck/planner/internal/allocator"
	"github.com/workdeck/planner/internal/learner"
	"github.com/workdeck/planner/internal/logger"
	"github.com/workdeck/planner/internal/recommend"
	"github.com/workdeck/planner/internal/registry"
	"github.com/workdeck/planner/internal/schedule"
	"github.com/workdeck/planner/internal/template"
	"github.com/workdeck/planner/internal/tracker"
)

// Server bundles the engine services behind a gin router.
type Server struct {
	registry  *registry.Registry
	allocator *allocator.Service
	builder   *schedule.Builder
	recommend *recommend.Engine
	learner   *learner.Learner
	templates *template.Applier
	tracker   *tracker.Tracker

	http *http.Server
}

// Options carries the wired services and listen settings.
type Options struct {
	Registry    *registry.Registry
	Allocator   *allocator.Service
	Builder     *schedule.Builder
	Recommender *recommend.Engine
	Learner     *learner.Learner
	Templates   *template.Applier
	Tracker     *tracker.Tracker
	Port        string
	Production  bool
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		registry:  opts.Registry,
		allocator: opts.Allocator,
		builder:   opts.Builder,
		recommend: opts.Recommender,
		learner:   opts.Learner,
		templates: opts.Templates,
		tracker:   opts.Tracker,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), corsMiddleware())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1/planner")
	api.Use(identityMiddleware())
	{
		api.GET("/schedule/:date", s.getSchedule)
		api.GET("/schedule/:date/week", s.getWeek)
		api.GET("/schedule/:date/month", s.getMonth)
		api.GET("/schedule/:date/summary", s.getSummary)
		api.POST("/allocate", s.postAllocate)
		api.GET("/recommendation", s.getRecommendation)

		api.GET("/blocks", s.listBlocks)
		api.POST("/blocks", s.createBlock)
		api.GET("/blocks/:id", s.getBlock)
		api.PATCH("/blocks/:id", s.updateBlock)
		api.DELETE("/blocks/:id", s.deactivateBlock)

		api.GET("/templates", s.listTemplates)
		api.POST("/templates", s.createTemplate)
		api.GET("/templates/:id", s.getTemplate)
		api.PUT("/templates/:id", s.updateTemplate)
		api.POST("/templates/:id/apply", s.applyTemplate)
		api.POST("/templates/standard", s.createStandardTemplate)

		api.POST("/tasks/:id/start", s.startTask)
		api.POST("/tasks/:id/complete", s.completeTask)
		api.POST("/tasks/:id/skip", s.skipTask)
		api.POST("/tasks/:id/reassign", s.reassignTask)

		api.GET("/patterns", s.getPatterns)
	}

	s.http = &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("planner listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return s.http.Shutdown(shutdownCtx)
}
