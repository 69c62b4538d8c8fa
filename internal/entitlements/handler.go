package entitlements

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// ResumeCounter reports how many resumes a user owns.
type ResumeCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// Handler exposes the entitlement snapshot.
type Handler struct {
	Svc     *Service
	Resumes ResumeCounter
}

func NewHandler(svc *Service, resumes ResumeCounter) *Handler {
	return &Handler{Svc: svc, Resumes: resumes}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/entitlements", h.get)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	count, err := h.Resumes.CountByUser(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to count resumes", nil)
		return
	}
	snap, err := h.Svc.Snapshot(c.Request.Context(), userID, count)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resolve entitlements", nil)
		return
	}
	respond.OK(c, snap)
}
