package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// Handler exposes the authenticated billing endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/billing/subscription", h.subscription)
	rg.POST("/billing/checkout", h.checkout)
	rg.POST("/billing/portal", h.portal)
}

type checkoutRequest struct {
	PriceID string `json:"priceId" binding:"required"`
}

func (h *Handler) subscription(c *gin.Context) {
	view, err := h.Svc.Subscription(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "priceId is required", nil)
		return
	}
	url, err := h.Svc.Checkout(c.Request.Context(), middleware.UserIDFromContext(c), req.PriceID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"url": url})
}

func (h *Handler) portal(c *gin.Context) {
	url, err := h.Svc.Portal(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"url": url})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
	case errors.Is(err, ErrUnknownPrice):
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown plan", nil)
	case errors.Is(err, ErrNoBillingAccount):
		respond.Error(c, http.StatusBadRequest, "no_billing_account", "no billing account for this user", nil)
	case errors.Is(err, ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "billing_unavailable", "billing is not configured", nil)
	default:
		telemetry.Error("billing.request.failed", map[string]any{
			"user_id": middleware.UserIDFromContext(c),
			"path":    c.FullPath(),
			"error":   err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "billing request failed", nil)
	}
}
