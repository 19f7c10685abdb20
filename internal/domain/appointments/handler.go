package appointments

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careportal/careportal/internal/platform/api"
	"github.com/careportal/careportal/internal/platform/auth"
	"github.com/careportal/careportal/pkg/pagination"
)

// Handler serves the doctor and patient appointment routes.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterDoctorRoutes mounts the doctor-facing appointment routes.
func (h *Handler) RegisterDoctorRoutes(g *echo.Group) {
	g.GET("/doctors/appointments", h.handleListForDoctor)
	g.PATCH("/doctors/appointments/:id/accept", h.handleAccept)
	g.PATCH("/doctors/appointments/:id/reject", h.handleReject)
	g.PUT("/doctors/appointments/:id", h.handleUpdate)
	g.PATCH("/doctors/appointments/:id", h.handleUpdate)
	g.POST("/doctors/appointments/:id/reschedule-request", h.handleResolveReschedule)
}

// RegisterPatientRoutes mounts the patient-facing appointment routes.
func (h *Handler) RegisterPatientRoutes(g *echo.Group) {
	g.GET("/patients/appointments", h.handleListForPatient)
	g.POST("/patients/appointments", h.handleBook)
	g.POST("/patients/appointments/:id/reschedule-request", h.handleRequestReschedule)
	g.PATCH("/patients/appointments/:id/cancel", h.handleCancel)
}

func respondErr(c echo.Context, err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return api.Fail(c, err)
	}
	return err
}

func sessionUser(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.IdentityFromContext(c.Request().Context()).UserID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	return id, nil
}

func apptID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	return id, nil
}

func (h *Handler) handleListForDoctor(c echo.Context) error {
	doctorID, err := sessionUser(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.ListForDoctor(c.Request().Context(), doctorID, p.Limit, p.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return api.OK(c, http.StatusOK, pagination.NewPage(items, total, p))
}

func (h *Handler) handleListForPatient(c echo.Context) error {
	patientID, err := sessionUser(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.ListForPatient(c.Request().Context(), patientID, p.Limit, p.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return api.OK(c, http.StatusOK, pagination.NewPage(items, total, p))
}

func (h *Handler) handleBook(c echo.Context) error {
	patientID, err := sessionUser(c)
	if err != nil {
		return err
	}
	var in BookInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Book(c.Request().Context(), patientID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusCreated, a)
}

func (h *Handler) handleAccept(c echo.Context) error {
	doctorID, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := apptID(c)
	if err != nil {
		return err
	}
	var in AcceptInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Accept(c.Request().Context(), id, doctorID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, a)
}

func (h *Handler) handleReject(c echo.Context) error {
	doctorID, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := apptID(c)
	if err != nil {
		return err
	}
	var in struct {
		DoctorNotes string `json:"doctorNotes"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Reject(c.Request().Context(), id, doctorID, in.DoctorNotes)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, a)
}

func (h *Handler) handleUpdate(c echo.Context) error {
	doctorID, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := apptID(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Update(c.Request().Context(), id, doctorID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, a)
}

func (h *Handler) handleResolveReschedule(c echo.Context) error {
	doctorID, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := apptID(c)
	if err != nil {
		return err
	}
	var in ResolveInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.ResolveReschedule(c.Request().Context(), id, doctorID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, a)
}

func (h *Handler) handleRequestReschedule(c echo.Context) error {
	patientID, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := apptID(c)
	if err != nil {
		return err
	}
	var req RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.RequestReschedule(c.Request().Context(), id, patientID, req)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, a)
}

func (h *Handler) handleCancel(c echo.Context) error {
	patientID, err := sessionUser(c)
	if err != nil {
		return err
	}
	id, err := apptID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Cancel(c.Request().Context(), id, patientID)
	if err != nil {
		return respondErr(c, err)
	}
	return api.OK(c, http.StatusOK, a)
}
