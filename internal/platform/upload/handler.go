package upload

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careportal/careportal/internal/platform/api"
)

// Handler serves the upload endpoints.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts upload routes on the supplied group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/upload/:kind", h.handleUpload)
	g.GET("/upload/:kind/:id", h.handleDownload)
	g.DELETE("/upload/:kind/:id", h.handleDelete)
}

func (h *Handler) handleUpload(c echo.Context) error {
	kind, err := ParseKind(c.Param("kind"))
	if err != nil {
		return api.Fail(c, api.ValidationError("unknown upload kind", map[string]string{
			"kind": c.Param("kind") + " is not a valid upload kind",
		}))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return api.Fail(c, api.ValidationError("file is required", map[string]string{
			"file": "multipart field \"file\" is required",
		}))
	}
	src, err := file.Open()
	if err != nil {
		return api.Fail(c, api.MutationError("failed to open uploaded file", err))
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	obj, err := h.store.Put(c.Request().Context(), Object{
		Kind:        kind,
		FileName:    file.Filename,
		ContentType: contentType,
		UploadedBy:  c.FormValue("uploaded_by"),
	}, src)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			return api.Fail(c, api.ValidationError("file exceeds maximum allowed size", map[string]string{"file": err.Error()}))
		case errors.Is(err, ErrInvalidContentType):
			return api.Fail(c, api.ValidationError("content type not allowed", map[string]string{"file": err.Error()}))
		case errors.Is(err, ErrMissingFileName):
			return api.Fail(c, api.ValidationError("file name is required", map[string]string{"file": err.Error()}))
		default:
			return api.Fail(c, api.MutationError("upload failed", err))
		}
	}

	return api.OK(c, http.StatusCreated, map[string]string{"url": obj.URL})
}

func (h *Handler) handleDownload(c echo.Context) error {
	rc, obj, err := h.store.Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return api.Fail(c, api.InvalidRecord("uploaded object not found"))
		}
		return api.Fail(c, api.FetchError("failed to open uploaded object", err))
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, obj.FileName))
	return c.Stream(http.StatusOK, obj.ContentType, rc)
}

func (h *Handler) handleDelete(c echo.Context) error {
	if err := h.store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return api.Fail(c, api.InvalidRecord("uploaded object not found"))
		}
		return api.Fail(c, api.MutationError("failed to delete uploaded object", err))
	}
	return c.NoContent(http.StatusNoContent)
}
