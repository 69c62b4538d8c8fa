package assist

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/validation"
)

// Handler exposes AI assist endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/summary", h.summary)
	rg.POST("/ai/work-experience", h.workExperience)
}

func (h *Handler) summary(c *gin.Context) {
	var in SummaryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	text, err := h.Svc.GenerateSummary(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"summary": text})
}

func (h *Handler) workExperience(c *gin.Context) {
	var in WorkExperienceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	entry, err := h.Svc.GenerateWorkExperience(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"workExperience": entry})
}

func writeError(c *gin.Context, err error) {
	var fields validation.FieldErrors
	switch {
	case errors.Is(err, ErrUnauthorized):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
	case errors.Is(err, ErrUpgradeRequired):
		respond.Error(c, http.StatusForbidden, "upgrade_required", "upgrade your subscription to use AI tools", nil)
	case errors.As(err, &fields):
		respond.Error(c, http.StatusBadRequest, "validation_error", "input is invalid", fields)
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", "AI provider is not configured", nil)
	case errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrUnavailable), errors.Is(err, ErrProviderFailed):
		respond.Error(c, http.StatusBadGateway, "ai_failed", "failed to generate AI response, please try again", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "ai request failed", nil)
	}
}
