package records

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careportal/careportal/internal/platform/api"
	"github.com/careportal/careportal/internal/platform/auth"
)

// Handler serves the doctor medical-record routes.
type Handler struct {
	svc *Service
	up  Uploader
}

func NewHandler(svc *Service, up Uploader) *Handler {
	return &Handler{svc: svc, up: up}
}

// RegisterRoutes mounts record routes on the doctor group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/doctor-medical-records/schema/:category", h.handleGetSchema)
	g.GET("/doctor-medical-records/:patientId", h.handleGetFile)
	g.POST("/doctor-medical-records/:patientId/:category", h.handleAddRecord)
	g.PUT("/doctor-medical-records/:patientId/:category/:itemId", h.handleUpdateRecord)
	g.DELETE("/doctor-medical-records/:patientId/:category/:itemId", h.handleDeleteRecord)
}

// respondErr writes domain errors through the envelope and passes framework
// errors (bad ids, auth) to echo unchanged.
func respondErr(c echo.Context, err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return api.Fail(c, err)
	}
	return err
}

func (h *Handler) handleGetSchema(c echo.Context) error {
	category, err := ParseCategory(c.Param("category"))
	if err != nil {
		return api.Fail(c, api.ValidationError("unknown record category", map[string]string{"category": err.Error()}))
	}
	return api.OK(c, http.StatusOK, FieldsForCategory(category))
}

func (h *Handler) handleGetFile(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	file, err := h.svc.LoadPatientFile(c.Request().Context(), patientID)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, file)
}

func (h *Handler) handleAddRecord(c echo.Context) error {
	patientID, category, doctorID, err := h.parseTarget(c)
	if err != nil {
		return respondErr(c, err)
	}
	fields, err := bindFields(c)
	if err != nil {
		return err
	}

	session := NewEditorSession()
	if err := session.OpenAdd(category); err != nil {
		return respondErr(c, err)
	}
	for name, value := range fields {
		if err := session.SetField(name, value); err != nil {
			return respondErr(c, err)
		}
	}
	file, err := session.Submit(c.Request().Context(), h.svc, h.up, patientID, doctorID)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusCreated, file)
}

func (h *Handler) handleUpdateRecord(c echo.Context) error {
	patientID, category, doctorID, err := h.parseTarget(c)
	if err != nil {
		return respondErr(c, err)
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	fields, err := bindFields(c)
	if err != nil {
		return err
	}

	item, err := h.svc.loadTarget(c.Request().Context(), patientID, category, itemID)
	if err != nil {
		return respondErr(c, err)
	}
	session := NewEditorSession()
	if err := session.OpenEdit(item); err != nil {
		return respondErr(c, err)
	}
	for name, value := range fields {
		if err := session.SetField(name, value); err != nil {
			return respondErr(c, err)
		}
	}
	file, err := session.Submit(c.Request().Context(), h.svc, h.up, patientID, doctorID)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, file)
}

func (h *Handler) handleDeleteRecord(c echo.Context) error {
	patientID, category, doctorID, err := h.parseTarget(c)
	if err != nil {
		return respondErr(c, err)
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	file, err := h.svc.DeleteRecord(c.Request().Context(), patientID, category, itemID, doctorID)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, file)
}

func (h *Handler) parseTarget(c echo.Context) (uuid.UUID, Category, uuid.UUID, error) {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return uuid.Nil, "", uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	category, err := ParseCategory(c.Param("category"))
	if err != nil {
		return uuid.Nil, "", uuid.Nil, api.ValidationError("unknown record category", map[string]string{"category": err.Error()})
	}
	identity := auth.IdentityFromContext(c.Request().Context())
	doctorID, err := uuid.Parse(identity.UserID)
	if err != nil {
		return uuid.Nil, "", uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing doctor identity")
	}
	return patientID, category, doctorID, nil
}

// bindFields decodes the request body into a field map, dropping immutable
// keys a client might echo back.
func bindFields(c echo.Context) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if err := c.Bind(&fields); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	delete(fields, "id")
	delete(fields, "_id")
	delete(fields, "doctorId")
	delete(fields, "createdBy")
	delete(fields, "createdAt")
	return fields, nil
}
