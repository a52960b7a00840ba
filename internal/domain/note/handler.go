package note

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/access"
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
	// The segment shares its param name with the appointment routes so the
	// router resolves both under one node.
	g := api.Group("/appointments/:id/notes", auth.RequireAuth())
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:note_id", h.Get)
	g.PATCH("/:note_id", h.Update)
	g.PUT("/:note_id", h.Update)
	g.DELETE("/:note_id", h.Delete)
}

type noteRequest struct {
	Description string `json:"description" validate:"required,max=5000"`
}

// response is the wire shape of a note. IsEditable tells the caller whether
// they may modify this particular note.
type response struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment"`
	Description   string    `json:"description"`
	CreatedBy     uuid.UUID `json:"created_by"`
	CreatedByName string    `json:"created_by_full_name"`
	CreatedOn     time.Time `json:"created_on"`
	IsEditable    bool      `json:"is_editable"`
}

func toResponse(n *Note, actor *auth.Principal) response {
	return response{
		ID:            n.ID,
		AppointmentID: n.AppointmentID,
		Description:   n.Description,
		CreatedBy:     n.CreatedBy,
		CreatedByName: n.CreatedByName,
		CreatedOn:     n.CreatedOn,
		IsEditable:    access.IsStaff(actor) || access.IsOwner(actor, n.CreatedBy),
	}
}

func appointmentID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound("appointment")
	}
	return id, nil
}

func (h *Handler) Create(c echo.Context) error {
	apptID, err := appointmentID(c)
	if err != nil {
		return err
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return apperr.FieldError("body", "Malformed request body.")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actor := auth.PrincipalFromContext(c.Request().Context())
	n, err := h.svc.Create(c.Request().Context(), actor, apptID, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toResponse(n, actor))
}

func (h *Handler) Get(c echo.Context) error {
	apptID, err := appointmentID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("note_id"))
	if err != nil {
		return apperr.NotFound("note")
	}

	actor := auth.PrincipalFromContext(c.Request().Context())
	n, err := h.svc.Get(c.Request().Context(), actor, apptID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(n, actor))
}

func (h *Handler) Update(c echo.Context) error {
	apptID, err := appointmentID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("note_id"))
	if err != nil {
		return apperr.NotFound("note")
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return apperr.FieldError("body", "Malformed request body.")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actor := auth.PrincipalFromContext(c.Request().Context())
	n, err := h.svc.Update(c.Request().Context(), actor, apptID, id, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(n, actor))
}

func (h *Handler) Delete(c echo.Context) error {
	apptID, err := appointmentID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("note_id"))
	if err != nil {
		return apperr.NotFound("note")
	}

	actor := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), actor, apptID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	apptID, err := appointmentID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	actor := auth.PrincipalFromContext(c.Request().Context())
	items, total, err := h.svc.List(c.Request().Context(), actor, apptID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	out := make([]response, 0, len(items))
	for _, n := range items {
		out = append(out, toResponse(n, actor))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, pg.Limit, pg.Offset))
}
