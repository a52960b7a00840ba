package appointment

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/apperr"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/appointments", auth.RequireAuth())
	g.POST("", h.Create)
	g.GET("", h.List)
	// Static routes before the :id wildcard.
	g.GET("/stats", h.Stats)
	g.GET("/today", h.Today)
	g.GET("/calendar", h.Calendar, auth.RequireStaff())
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

type createRequest struct {
	Date        string  `json:"date" validate:"required"`
	Time        string  `json:"time" validate:"required"`
	VisitType   string  `json:"visit_type" validate:"required,oneof=I V"`
	CreatedFor  *string `json:"created_for"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type updateRequest struct {
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	VisitType   *string `json:"visit_type" validate:"omitempty,oneof=I V"`
	IsClosed    *bool   `json:"is_closed"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

// response is the wire shape of an appointment, with the expanded visit
// type alongside the code.
type response struct {
	ID             uuid.UUID `json:"id"`
	Date           Date      `json:"date"`
	Time           TimeOfDay `json:"time"`
	VisitType      VisitType `json:"visit_type"`
	VisitTypeFull  string    `json:"visit_type_full"`
	CreatedFor     uuid.UUID `json:"created_for"`
	CreatedForName string    `json:"created_for_full_name"`
	IsClosed       bool      `json:"is_closed"`
	Description    *string   `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toResponse(a *Appointment) response {
	return response{
		ID:             a.ID,
		Date:           a.Date,
		Time:           a.Time,
		VisitType:      a.VisitType,
		VisitTypeFull:  a.VisitType.Display(),
		CreatedFor:     a.CreatedFor,
		CreatedForName: a.CreatedForName,
		IsClosed:       a.IsClosed,
		Description:    a.Description,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toResponses(appts []*Appointment) []response {
	out := make([]response, 0, len(appts))
	for _, a := range appts {
		out = append(out, toResponse(a))
	}
	return out
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return apperr.FieldError("body", "Malformed request body.")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	date, err := ParseDate(req.Date)
	if err != nil {
		return apperr.FieldError("date", "Date has wrong format. Use YYYY-MM-DD.")
	}
	tod, err := ParseTimeOfDay(req.Time)
	if err != nil {
		return apperr.FieldError("time", "Time has wrong format. Use HH:MM.")
	}

	in := CreateInput{
		Date:        date,
		Time:        tod,
		VisitType:   VisitType(req.VisitType),
		Description: req.Description,
	}
	if req.CreatedFor != nil {
		id, err := uuid.Parse(*req.CreatedFor)
		if err != nil {
			return apperr.FieldError("created_for", "Must be a valid UUID.")
		}
		in.CreatedFor = &id
	}

	a, err := h.svc.Create(c.Request().Context(), auth.PrincipalFromContext(c.Request().Context()), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toResponse(a))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NotFound("appointment")
	}
	a, err := h.svc.Get(c.Request().Context(), auth.PrincipalFromContext(c.Request().Context()), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(a))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NotFound("appointment")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.FieldError("body", "Malformed request body.")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var in UpdateInput
	if req.Date != nil {
		date, err := ParseDate(*req.Date)
		if err != nil {
			return apperr.FieldError("date", "Date has wrong format. Use YYYY-MM-DD.")
		}
		in.Date = &date
	}
	if req.Time != nil {
		tod, err := ParseTimeOfDay(*req.Time)
		if err != nil {
			return apperr.FieldError("time", "Time has wrong format. Use HH:MM.")
		}
		in.Time = &tod
	}
	if req.VisitType != nil {
		vt := VisitType(*req.VisitType)
		in.VisitType = &vt
	}
	in.IsClosed = req.IsClosed
	in.Description = req.Description

	a, err := h.svc.Update(c.Request().Context(), auth.PrincipalFromContext(c.Request().Context()), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(a))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NotFound("appointment")
	}
	if err := h.svc.Delete(c.Request().Context(), auth.PrincipalFromContext(c.Request().Context()), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// filterFromQuery builds a repository filter from the listing query params.
func filterFromQuery(c echo.Context) (Filter, error) {
	var f Filter

	if v := c.QueryParam("id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, apperr.FieldError("id", "Must be a valid UUID.")
		}
		f.ID = &id
	}
	if v := c.QueryParam("created_for"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, apperr.FieldError("created_for", "Must be a valid UUID.")
		}
		f.CreatedFor = &id
	}
	f.CreatedForName = c.QueryParam("created_for_name")
	if v := c.QueryParam("visit_type"); v != "" {
		vt := VisitType(v)
		if !vt.Valid() {
			return f, apperr.FieldError("visit_type", "Must be one of: I, V.")
		}
		f.VisitType = &vt
	}
	if v := c.QueryParam("is_closed"); v != "" {
		closed := v == "true" || v == "True" || v == "1"
		f.IsClosed = &closed
	}

	dates := map[string]**Date{
		"date":        &f.Date,
		"date_after":  &f.DateAfter,
		"date_before": &f.DateBefore,
	}
	for param, dst := range dates {
		if v := c.QueryParam(param); v != "" {
			d, err := ParseDate(v)
			if err != nil {
				return f, apperr.FieldError(param, "Date has wrong format. Use YYYY-MM-DD.")
			}
			*dst = &d
		}
	}
	times := map[string]**TimeOfDay{
		"time":        &f.Time,
		"time_after":  &f.TimeAfter,
		"time_before": &f.TimeBefore,
	}
	for param, dst := range times {
		if v := c.QueryParam(param); v != "" {
			t, err := ParseTimeOfDay(v)
			if err != nil {
				return f, apperr.FieldError(param, "Time has wrong format. Use HH:MM.")
			}
			*dst = &t
		}
	}

	return f, nil
}

func (h *Handler) List(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), auth.PrincipalFromContext(c.Request().Context()), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(toResponses(items), total, pg.Limit, pg.Offset))
}

func (h *Handler) Today(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Today(c.Request().Context(), auth.PrincipalFromContext(c.Request().Context()), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(toResponses(items), total, pg.Limit, pg.Offset))
}

func (h *Handler) Calendar(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Calendar(c.Request().Context(), auth.PrincipalFromContext(c.Request().Context()), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(toResponses(items), total, pg.Limit, pg.Offset))
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context(), auth.PrincipalFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
