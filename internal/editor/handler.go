package editor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/validation"
)

const maxStepBody = 256 << 10

// Handler exposes editor sessions over HTTP.
type Handler struct {
	Sessions *Manager
}

func NewHandler(m *Manager) *Handler {
	return &Handler{Sessions: m}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/editor/sessions", h.open)
	rg.GET("/editor/sessions/:id", h.state)
	rg.POST("/editor/sessions/:id/navigate", h.navigate)
	rg.GET("/editor/sessions/:id/steps/:step", h.slice)
	rg.PATCH("/editor/sessions/:id/steps/:step", h.apply)
	rg.POST("/editor/sessions/:id/reorder", h.reorder)
	rg.POST("/editor/sessions/:id/flush", h.flush)
	rg.DELETE("/editor/sessions/:id", h.close)
}

type openRequest struct {
	ResumeID string `json:"resumeId"`
}

type navigateRequest struct {
	Direction Direction `json:"direction"`
	Step      StepKey   `json:"step"`
}

type reorderRequest struct {
	List ListKind `json:"list"`
	From *int     `json:"from"`
	To   *int     `json:"to"`
}

func (h *Handler) open(c *gin.Context) {
	var req openRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	sess, err := h.Sessions.Open(c.Request.Context(), middleware.UserIDFromContext(c), req.ResumeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("sessionId", sess.ID)
	respond.Created(c, sess.State())
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	c.Set("sessionId", c.Param("id"))
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		writeError(c, ErrUnauthorized)
		return nil, false
	}
	sess, err := h.Sessions.Get(userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) state(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respond.OK(c, sess.State())
}

func (h *Handler) navigate(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	var err error
	switch {
	case req.Step != "":
		err = sess.GoTo(req.Step)
	case req.Direction != "":
		_, err = sess.Navigate(req.Direction)
	default:
		err = ErrInvalidInput
	}
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, sess.State())
}

func (h *Handler) slice(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	slice, err := sess.Slice(StepKey(c.Param("step")))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, slice)
}

func (h *Handler) apply(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxStepBody))
	if err != nil || !json.Valid(raw) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := sess.Apply(StepKey(c.Param("step")), raw); err != nil {
		writeError(c, err)
		return
	}
	if err := sess.Commit(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, sess.State())
}

func (h *Handler) reorder(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.From == nil || req.To == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "list, from and to are required", nil)
		return
	}
	if err := sess.Reorder(req.List, *req.From, *req.To); err != nil {
		writeError(c, err)
		return
	}
	if err := sess.Commit(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, sess.State())
}

func (h *Handler) flush(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Flush(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, sess.State())
}

func (h *Handler) close(c *gin.Context) {
	c.Set("sessionId", c.Param("id"))
	if err := h.Sessions.Close(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	var fields validation.FieldErrors
	switch {
	case errors.As(err, &fields):
		respond.Error(c, http.StatusBadRequest, "validation_error", "step is invalid", fields)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, resumes.ErrUnauthorized):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
	case errors.Is(err, ErrUpgradeRequired), errors.Is(err, resumes.ErrUpgradeRequired):
		respond.Error(c, http.StatusForbidden, "upgrade_required", "resume limit reached for your plan", nil)
	case errors.Is(err, ErrTooManySessions):
		respond.Error(c, http.StatusTooManyRequests, "too_many_sessions", "close an open editor session first", nil)
	case errors.Is(err, ErrSessionNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "editor session not found", nil)
	case errors.Is(err, resumes.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrUnknownStep), errors.Is(err, ErrUnknownList), errors.Is(err, ErrInvalidMove), errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrSessionClosed):
		respond.Error(c, http.StatusGone, "session_closed", "editor session closed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "editor operation failed", nil)
	}
}
