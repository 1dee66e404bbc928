package onboarding

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for onboarding operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new onboarding handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers onboarding routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	onboarding := router.Group("/onboarding")
	{
		onboarding.GET("/status", h.checkStatus)

		sessions := onboarding.Group("/sessions")
		{
			sessions.POST("", h.createSession)
			sessions.POST("/resume-or-start", h.resumeOrStart)
			sessions.GET("/active", h.getActiveSession)
			sessions.GET("/:id", h.getSession)
			sessions.PUT("/:id", h.updateSession)
			sessions.DELETE("/:id", h.deleteSession)

			sessions.POST("/:id/steps/:stepId/complete", h.completeStep)
			sessions.POST("/:id/back", h.backStep)
			sessions.POST("/:id/pause", h.pauseSession)
			sessions.POST("/:id/resume", h.resumeSession)
			sessions.POST("/:id/cancel", h.cancelSession)
			sessions.GET("/:id/progress", h.getProgress)
		}
	}
}

// createSession handles POST /api/v1/onboarding/sessions
func (h *Handler) createSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := h.getUserID(c)

	session, err := h.service.CreateSession(c.Request.Context(), userID, &req)
	if err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		c.JSON(h.statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// resumeOrStart handles POST /api/v1/onboarding/sessions/resume-or-start
func (h *Handler) resumeOrStart(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := h.getUserID(c)

	session, err := h.service.ResumeOrStart(c.Request.Context(), userID, &req)
	if err != nil {
		h.logger.Error("Failed to resume or start session", zap.Error(err))
		c.JSON(h.statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// getActiveSession handles GET /api/v1/onboarding/sessions/active
func (h *Handler) getActiveSession(c *gin.Context) {
	userID := h.getUserID(c)

	session, err := h.service.GetActiveSession(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get active session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if session == nil {
		// No active session is a valid answer, not an error.
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// getSession handles GET /api/v1/onboarding/sessions/:id
func (h *Handler) getSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	session, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		c.JSON(h.statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// updateSession handles PUT /api/v1/onboarding/sessions/:id
func (h *Handler) updateSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	var req struct {
		RestaurantID *uuid.UUID `json:"restaurant_id"`
		VenueID      *uuid.UUID `json:"venue_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.UpdateSession(c.Request.Context(), id, req.RestaurantID, req.VenueID)
	if err != nil {
		h.logger.Error("Failed to update session", zap.Error(err), zap.String("session_id", id.String()))
		c.JSON(h.statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// deleteSession handles DELETE /api/v1/onboarding/sessions/:id
func (h *Handler) deleteSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	if err := h.service.DeleteSession(c.Request.Context(), id); err != nil {
		c.JSON(h.statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// completeStep handles POST /api/v1/onboarding/sessions/:id/steps/:stepId/complete
func (h *Handler) completeStep(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	var req struct {
		Data StepData `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stepID := StepKind(c.Param("stepId"))

	session, err := h.service.CompleteStep(c.Request.Context(), id, stepID, req.Data)
	if err != nil {
		h.logger.Error("Failed to complete step",
			zap.Error(err),
			zap.String("session_id", id.String()),
			zap.String("step", string(stepID)))
		c.JSON(h.statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// backStep handles POST /api/v1/onboarding/sessions/:id/back
func (h *Handler) backStep(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	session, err := h.service.BackStep(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to go back", zap.Error(err), zap.String("session_id", id.String()))
		c.JSON(h.statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// pauseSession handles POST /api/v1/onboarding/sessions/:id/pause
func (h *Handler) pauseSession(c *gin.Context) {
	h.transition(c, h.service.PauseSession)
}

// resumeSession handles POST /api/v1/onboarding/sessions/:id/resume
func (h *Handler) resumeSession(c *gin.Context) {
	h.transition(c, h.service.ResumeSession)
}

// cancelSession handles POST /api/v1/onboarding/sessions/:id/cancel
func (h *Handler) cancelSession(c *gin.Context) {
	h.transition(c, h.service.CancelSession)
}

// getProgress handles GET /api/v1/onboarding/sessions/:id/progress
func (h *Handler) getProgress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	view, err := h.service.GetCompletionView(c.Request.Context(), id)
	if err != nil {
		c.JSON(h.statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

// checkStatus handles GET /api/v1/onboarding/status
func (h *Handler) checkStatus(c *gin.Context) {
	userID := h.getUserID(c)

	status, err := h.service.CheckOnboardingStatus(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to check onboarding status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

// =====================================================
// Helpers
// =====================================================

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*Session, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	session, err := op(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Session transition failed", zap.Error(err), zap.String("session_id", id.String()))
		c.JSON(h.statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// getUserID extracts the user id placed in the context by the auth middleware
func (h *Handler) getUserID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
		if s, ok := v.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				return id
			}
		}
	}
	return uuid.Nil
}

func (h *Handler) statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrActiveSessionExists), errors.Is(err, ErrNavigationInFlight):
		return http.StatusConflict
	case errors.Is(err, ErrNoActiveStep), errors.Is(err, ErrAtFirstStep),
		errors.Is(err, ErrNothingToSubmit), errors.Is(err, ErrStepMismatch),
		errors.Is(err, ErrSessionNotActive), errors.Is(err, ErrUnknownSessionType),
		errors.Is(err, ErrUnknownStepKind), errors.Is(err, ErrStepDataInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
