package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workdeck/planner/internal/apperr"
	"github.com/workdeck/planner/internal/models"
	"github.com/workdeck/planner/internal/template"
)

// --- schedule ---

func (s *Server) getSchedule(c *gin.Context) {
	day, err := s.builder.Build(c.Request.Context(), userID(c), c.Param("date"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func (s *Server) getWeek(c *gin.Context) {
	week, err := s.builder.BuildWeek(c.Request.Context(), userID(c), c.Param("date"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (s *Server) getMonth(c *gin.Context) {
	month, err := s.builder.BuildMonth(c.Request.Context(), userID(c), c.Param("date"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, month)
}

func (s *Server) getSummary(c *gin.Context) {
	sum, err := s.builder.Summarize(c.Request.Context(), userID(c), c.Param("date"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// --- allocation ---

type allocateRequest struct {
	Date string `json:"date" binding:"required"`
}

func (s *Server) postAllocate(c *gin.Context) {
	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, &apperr.ValidationError{Field: "date", Reason: "required, YYYY-MM-DD"})
		return
	}
	res, err := s.allocator.Allocate(c.Request.Context(), userID(c), orgID(c), req.Date)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- recommendation ---

func (s *Server) getRecommendation(c *gin.Context) {
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondErr(c, &apperr.ValidationError{Field: "at", Reason: "invalid RFC3339 timestamp"})
			return
		}
		at = parsed
	}
	suggestion, err := s.recommend.Next(c.Request.Context(), userID(c), at)
	if err != nil {
		respondErr(c, err)
		return
	}
	if suggestion == nil {
		c.JSON(http.StatusOK, gin.H{"suggestion": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}

// --- blocks ---

type blockRequest struct {
	Name      string             `json:"name"`
	Start     string             `json:"start"`
	End       string             `json:"end"`
	DayOfWeek *int               `json:"day_of_week"`
	Workdays  bool               `json:"workdays"`
	Energy    models.EnergyLevel `json:"energy_level"`
	IsBreak   bool               `json:"is_break"`
}

func (r blockRequest) toModel(userID, orgID string) models.TimeBlock {
	b := models.TimeBlock{
		UserID:   userID,
		OrgID:    orgID,
		Name:     r.Name,
		Start:    r.Start,
		End:      r.End,
		Workdays: r.Workdays,
		Energy:   r.Energy,
		IsBreak:  r.IsBreak,
	}
	if r.DayOfWeek != nil {
		wd := time.Weekday(*r.DayOfWeek)
		b.DayOfWeek = &wd
	}
	return b
}

func (s *Server) listBlocks(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		blocks, err := s.registry.BlocksForDate(userID(c), date)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"blocks": blocks})
		return
	}
	blocks, err := s.registry.List(userID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}

func (s *Server) createBlock(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, &apperr.ValidationError{Reason: "malformed block payload"})
		return
	}
	block, err := s.registry.Create(c.Request.Context(), req.toModel(userID(c), orgID(c)))
	if err != nil {
		respondErr(c, err)
		return
	}
	s.supersedeUpcoming(userID(c))
	c.JSON(http.StatusCreated, block)
}

func (s *Server) getBlock(c *gin.Context) {
	block, err := s.registry.Get(userID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, block)
}

func (s *Server) updateBlock(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, &apperr.ValidationError{Reason: "malformed block payload"})
		return
	}
	block := req.toModel(userID(c), orgID(c))
	block.ID = c.Param("id")
	updated, err := s.registry.Update(c.Request.Context(), block)
	if err != nil {
		respondErr(c, err)
		return
	}
	s.supersedeUpcoming(userID(c))
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deactivateBlock(c *gin.Context) {
	if err := s.registry.Deactivate(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	s.supersedeUpcoming(userID(c))
	c.Status(http.StatusNoContent)
}

// supersedeUpcoming discards in-flight allocation runs over the recurrence
// horizon a block edit can affect.
func (s *Server) supersedeUpcoming(user string) {
	today := time.Now()
	for i := 0; i < 14; i++ {
		s.allocator.Supersede(user, models.FormatDate(today.AddDate(0, 0, i)))
	}
}

// --- templates ---

type templateRequest struct {
	Name   string                 `json:"name"`
	Blocks []models.TemplateBlock `json:"blocks"`
}

func (s *Server) listTemplates(c *gin.Context) {
	templates, err := s.templates.List(userID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (s *Server) createTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, &apperr.ValidationError{Reason: "malformed template payload"})
		return
	}
	tpl, err := s.templates.Create(models.DayTemplate{
		UserID: userID(c),
		OrgID:  orgID(c),
		Name:   req.Name,
		Blocks: req.Blocks,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (s *Server) getTemplate(c *gin.Context) {
	tpl, err := s.templates.Get(userID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (s *Server) updateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, &apperr.ValidationError{Reason: "malformed template payload"})
		return
	}
	tpl, err := s.templates.Update(models.DayTemplate{
		ID:     c.Param("id"),
		UserID: userID(c),
		OrgID:  orgID(c),
		Name:   req.Name,
		Blocks: req.Blocks,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (s *Server) applyTemplate(c *gin.Context) {
	count, err := s.templates.Apply(c.Request.Context(), userID(c), orgID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	s.supersedeUpcoming(userID(c))
	c.JSON(http.StatusOK, gin.H{"blocks_created": count})
}

func (s *Server) createStandardTemplate(c *gin.Context) {
	tpl, err := s.templates.Create(template.StandardWorkday(userID(c), orgID(c)))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

// --- task transitions ---

func (s *Server) startTask(c *gin.Context) {
	st, err := s.tracker.Start(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

type completeRequest struct {
	ActualMinutes int                `json:"actual_minutes" binding:"required"`
	ActualEnergy  models.EnergyLevel `json:"actual_energy_level"`
}

func (s *Server) completeTask(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, &apperr.ValidationError{Field: "actual_minutes", Reason: "required, positive"})
		return
	}
	st, err := s.tracker.Complete(c.Request.Context(), userID(c), c.Param("id"), req.ActualMinutes, req.ActualEnergy)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) skipTask(c *gin.Context) {
	st, err := s.tracker.Skip(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

type reassignRequest struct {
	BlockID string `json:"block_id" binding:"required"`
}

func (s *Server) reassignTask(c *gin.Context) {
	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, &apperr.ValidationError{Field: "block_id", Reason: "required"})
		return
	}
	st, err := s.tracker.Reassign(c.Request.Context(), userID(c), c.Param("id"), req.BlockID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// --- patterns ---

func (s *Server) getPatterns(c *gin.Context) {
	patterns, err := s.learner.Patterns(userID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": patterns})
}
