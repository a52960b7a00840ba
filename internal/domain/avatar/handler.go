package avatar

import (
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/apperr"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Create and read are open, even to anonymous callers; only replacement
	// and removal are staff operations. The segment shares its param name
	// with the user routes so the router resolves both under one node.
	g := api.Group("/users/:id/avatar")
	g.POST("", h.Create)
	g.GET("", h.Get)
	g.GET("/image", h.Image)
	g.PUT("", h.Update, auth.RequireStaff())
	g.DELETE("", h.Delete, auth.RequireStaff())
}

func userID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound("user")
	}
	return id, nil
}

// formUpload extracts the avatar image from the multipart form. The caller
// closes the returned file.
func formUpload(c echo.Context) (Upload, multipart.File, error) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return Upload{}, nil, apperr.FieldError("avatar", "An image file is required.")
	}
	f, err := fh.Open()
	if err != nil {
		return Upload{}, nil, apperr.FieldError("avatar", "Could not read the uploaded file.")
	}
	up := Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Content:     f,
	}
	return up, f, nil
}

func (h *Handler) Create(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	up, f, err := formUpload(c)
	if err != nil {
		return err
	}
	defer f.Close()

	a, err := h.svc.Create(c.Request().Context(), id, up)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Image(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	a, content, err := h.svc.Open(c.Request().Context(), id)
	if err != nil {
		return err
	}
	defer content.Close()
	return c.Stream(http.StatusOK, a.ContentType, content)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	up, f, err := formUpload(c)
	if err != nil {
		return err
	}
	defer f.Close()

	actor := auth.PrincipalFromContext(c.Request().Context())
	a, err := h.svc.Update(c.Request().Context(), actor, id, up)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	actor := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
