package category

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	categorysvc "github.com/AlmamyHaidara/biblioteque/service/category"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

type Controller struct {
	Svc categorysvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /api/v1/categories
func (h *Controller) List(c echo.Context) error {
	page, limit := pageParams(c)
	cats, total, err := h.Svc.List(c.Request().Context(), page, limit)
	if err != nil {
		return h.fail(c, "category list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(cats),
		"pagination": echo.Map{
			"page":         page,
			"limit":        limit,
			"totalPages":   (total + int64(limit) - 1) / int64(limit),
			"totalResults": total,
		},
		"data": echo.Map{"categories": cats},
	})
}

// GET /api/v1/categories/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	cat, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "category detail", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"category": cat}})
}

// POST /api/v1/categories  (admin, librarian)
func (h *Controller) Create(c echo.Context) error {
	var req CreateCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "validation error", "errors": err.Error()})
	}

	cat, err := h.Svc.Create(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return h.fail(c, "category create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "data": echo.Map{"category": cat}})
}

// PATCH /api/v1/categories/:id  (admin, librarian)
func (h *Controller) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	var req UpdateCategoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "validation error", "errors": err.Error()})
	}

	cat, err := h.Svc.Update(c.Request().Context(), id, categorysvc.UpdatePatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, "category update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"category": cat}})
}

// DELETE /api/v1/categories/:id  (admin, librarian)
func (h *Controller) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "category delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": err.Error()})
	case apperr.KindConflict:
		return c.JSON(http.StatusConflict, echo.Map{"status": "error", "message": err.Error()})
	case apperr.KindBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}
	h.Log.Error(op, "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "internal error"})
}
