package medications

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careportal/careportal/internal/platform/api"
	"github.com/careportal/careportal/internal/platform/auth"
)

// Handler serves the patient medication routes.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts medication routes on the patient group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients/medications", h.handleList)
	g.POST("/patients/medications", h.handleAdd)
	g.PUT("/patients/medications/:id", h.handleUpdate)
	g.DELETE("/patients/medications/:id", h.handleDelete)
	g.PUT("/patients/medications/:id/reminders", h.handleReplaceReminders)
}

func respondErr(c echo.Context, err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return api.Fail(c, err)
	}
	return err
}

func sessionPatient(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.IdentityFromContext(c.Request().Context()).UserID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing patient identity")
	}
	return id, nil
}

func medID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid medication id")
	}
	return id, nil
}

func (h *Handler) handleList(c echo.Context) error {
	patientID, err := sessionPatient(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListForPatient(c.Request().Context(), patientID)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, items)
}

func (h *Handler) handleAdd(c echo.Context) error {
	patientID, err := sessionPatient(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m, err := h.svc.Add(c.Request().Context(), patientID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusCreated, m)
}

func (h *Handler) handleUpdate(c echo.Context) error {
	patientID, err := sessionPatient(c)
	if err != nil {
		return err
	}
	id, err := medID(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m, err := h.svc.Update(c.Request().Context(), id, patientID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, m)
}

func (h *Handler) handleDelete(c echo.Context) error {
	patientID, err := sessionPatient(c)
	if err != nil {
		return err
	}
	id, err := medID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id, patientID); err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, map[string]string{"id": id.String()})
}

func (h *Handler) handleReplaceReminders(c echo.Context) error {
	patientID, err := sessionPatient(c)
	if err != nil {
		return err
	}
	id, err := medID(c)
	if err != nil {
		return err
	}
	var in struct {
		Reminders []Reminder `json:"reminders"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m, err := h.svc.ReplaceReminders(c.Request().Context(), id, patientID, in.Reminders)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, m)
}
