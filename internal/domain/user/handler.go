package user

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
	svc      *Service
	secret   []byte
	tokenTTL time.Duration
}

func NewHandler(svc *Service, secret []byte, tokenTTL time.Duration) *Handler {
	return &Handler{svc: svc, secret: secret, tokenTTL: tokenTTL}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/me", h.Me, auth.RequireAuth())

	g := api.Group("/users", auth.RequireAuth())
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8"`
	IsStaff   bool   `json:"is_staff"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
	IsStaff   *bool   `json:"is_staff"`
	IsActive  *bool   `json:"is_active"`
}

// response is the wire shape of a user account.
type response struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	IsStaff   bool      `json:"is_staff"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(u *User) response {
	return response{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		IsStaff:   u.IsStaff,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperr.FieldError("body", "Malformed request body.")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actor := auth.PrincipalFromContext(c.Request().Context())
	u, err := h.svc.Register(c.Request().Context(), actor, RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		IsStaff:   req.IsStaff,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toResponse(u))
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.FieldError("body", "Malformed request body.")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	u, err := h.svc.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	token, err := auth.IssueToken(h.secret, h.tokenTTL, u.ID, u.Username, u.IsStaff)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  toResponse(u),
	})
}

func (h *Handler) Me(c echo.Context) error {
	actor := auth.PrincipalFromContext(c.Request().Context())
	u, err := h.svc.Get(c.Request().Context(), actor, actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(u))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NotFound("user")
	}
	actor := auth.PrincipalFromContext(c.Request().Context())
	u, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(u))
}

func (h *Handler) List(c echo.Context) error {
	f := Filter{
		Username:  c.QueryParam("username"),
		Email:     c.QueryParam("email"),
		FirstName: c.QueryParam("first_name"),
		LastName:  c.QueryParam("last_name"),
	}
	if v := c.QueryParam("is_staff"); v != "" {
		b := v == "true" || v == "True" || v == "1"
		f.IsStaff = &b
	}
	if v := c.QueryParam("is_active"); v != "" {
		b := v == "true" || v == "True" || v == "1"
		f.IsActive = &b
	}

	pg := pagination.FromContext(c)
	actor := auth.PrincipalFromContext(c.Request().Context())
	items, total, err := h.svc.List(c.Request().Context(), actor, f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	out := make([]response, 0, len(items))
	for _, u := range items {
		out = append(out, toResponse(u))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NotFound("user")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.FieldError("body", "Malformed request body.")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actor := auth.PrincipalFromContext(c.Request().Context())
	u, err := h.svc.Update(c.Request().Context(), actor, id, UpdateInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		IsStaff:   req.IsStaff,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(u))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NotFound("user")
	}
	actor := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
