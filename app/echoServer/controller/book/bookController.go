package book

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	bookrepo "github.com/AlmamyHaidara/biblioteque/repository/book"
	booksvc "github.com/AlmamyHaidara/biblioteque/service/book"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// List books
// @Summary      List books
// @Description  Filtered, paginated book catalog. title/author/category are case-insensitive substring filters.
// @Tags         books
// @Produce      json
// @Param        title      query  string  false  "title filter"
// @Param        author     query  string  false  "author filter"
// @Param        category   query  string  false  "category name filter"
// @Param        available  query  bool    false  "only books with quantity > 0"
// @Param        page       query  int     false  "page (default 1)"
// @Param        limit      query  int     false  "page size (default 10)"
// @Success      200  {object}  map[string]any
// @Router       /api/v1/books [get]
func (h *Controller) List(c echo.Context) error {
	page, limit := pageParams(c)
	f := bookrepo.Filter{
		Title:     c.QueryParam("title"),
		Author:    c.QueryParam("author"),
		Category:  c.QueryParam("category"),
		Available: c.QueryParam("available") == "true",
		Page:      page,
		Limit:     limit,
	}

	books, total, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, "book list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(books),
		"pagination": echo.Map{
			"page":         page,
			"limit":        limit,
			"totalPages":   totalPages(total, limit),
			"totalResults": total,
		},
		"data": echo.Map{"books": books},
	})
}

// GET /api/v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	b, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "book detail", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"book": b}})
}

// POST /api/v1/books  (admin, librarian)
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "validation error", "errors": err.Error()})
	}
	catID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid categoryId"})
	}

	b, err := h.Svc.Create(c.Request().Context(), booksvc.CreateInput{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Publisher:       req.Publisher,
		Description:     req.Description,
		Quantity:        req.Quantity,
		CategoryID:      catID,
		CoverImage:      req.CoverImage,
	})
	if err != nil {
		return h.fail(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "data": echo.Map{"book": b}})
}

// PATCH /api/v1/books/:id  (admin, librarian)
func (h *Controller) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "validation error", "errors": err.Error()})
	}

	patch := booksvc.UpdatePatch{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Publisher:       req.Publisher,
		Description:     req.Description,
		Quantity:        req.Quantity,
		CoverImage:      req.CoverImage,
	}
	if req.CategoryID != nil {
		catID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid categoryId"})
		}
		patch.CategoryID = &catID
	}

	b, err := h.Svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return h.fail(c, "book update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"book": b}})
}

// DELETE /api/v1/books/:id  (admin, librarian)
func (h *Controller) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "book delete", err)
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
