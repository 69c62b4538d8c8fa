package resumes

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/validation"
)

// multipart framing on top of the photo itself
const maxPhotoRequestSize = MaxPhotoBytes + 1<<20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.POST("/resumes", h.save)
	rg.GET("/resumes/:id", h.get)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/resumes/:id/photo", h.uploadPhoto)
	rg.GET("/resumes/:id/photo", h.photo)
	rg.DELETE("/resumes/:id/photo", h.deletePhoto)
}

func (h *Handler) list(c *gin.Context) {
	result, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to list resumes")
		return
	}
	out := ListResponse{
		Resumes:    make([]ResumeResponse, 0, len(result.Resumes)),
		TotalCount: result.TotalCount,
		CanCreate:  result.CanCreate,
	}
	for _, r := range result.Resumes {
		out.Resumes = append(out.Resumes, toResponse(r))
	}
	respond.OK(c, out)
}

func (h *Handler) save(c *gin.Context) {
	var req Resume
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	isNew := req.ID == ""
	saved, err := h.Svc.Save(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err, "failed to save resume")
		return
	}
	c.Set("resumeId", saved.ID)
	if isNew {
		respond.Created(c, toResponse(saved))
		return
	}
	respond.OK(c, toResponse(saved))
}

func (h *Handler) get(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	res, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch resume")
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) delete(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete resume")
		return
	}
	respond.NoContent(c)
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoRequestSize)

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "photo is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read photo", nil)
		return
	}
	defer file.Close()

	res, err := h.Svc.UploadPhoto(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), fileHeader.Filename, file)
	if err != nil {
		writeError(c, err, "failed to upload photo")
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) photo(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	rc, err := h.Svc.OpenPhoto(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to open photo")
		return
	}
	defer rc.Close()

	var sniff [512]byte
	n, _ := io.ReadFull(rc, sniff[:])
	c.Header("Cache-Control", "private, max-age=300")
	c.Header("Content-Type", http.DetectContentType(sniff[:n]))
	c.Status(http.StatusOK)
	c.Writer.Write(sniff[:n])
	io.Copy(c.Writer, rc)
}

func (h *Handler) deletePhoto(c *gin.Context) {
	c.Set("resumeId", c.Param("id"))
	if err := h.Svc.DeletePhoto(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete photo")
		return
	}
	respond.NoContent(c)
}

func writeError(c *gin.Context, err error, fallback string) {
	var fields validation.FieldErrors
	switch {
	case errors.As(err, &fields):
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume is invalid", fields)
	case errors.Is(err, ErrUnauthorized):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
	case errors.Is(err, ErrUpgradeRequired):
		respond.Error(c, http.StatusForbidden, "upgrade_required", "resume limit reached for your plan", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrPhotoTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "photo must be at most 4 MB", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
