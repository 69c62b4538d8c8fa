package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

// me prefers the stored profile and falls back to token claims for users
// that have not been persisted yet.
func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	switch {
	case errors.Is(err, ErrNotFound):
		user = User{
			ID:         userID,
			Email:      middleware.UserEmailFromContext(c),
			FullName:   middleware.UserNameFromContext(c),
			PictureURL: middleware.UserPictureFromContext(c),
		}
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"fullName":          user.FullName,
		"pictureUrl":        user.PictureURL,
		"hasBillingAccount": user.BillingCustomerID != "",
	})
}
