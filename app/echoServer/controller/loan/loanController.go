package loan

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AlmamyHaidara/biblioteque/app/echoServer/jwtx"
	"github.com/AlmamyHaidara/biblioteque/model"
	loanrepo "github.com/AlmamyHaidara/biblioteque/repository/loan"
	loansvc "github.com/AlmamyHaidara/biblioteque/service/loan"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

type Controller struct {
	Svc loansvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Create a loan
// @Summary      Create loan
// @Description  Creates an ACTIVE loan, decrements book stock and fulfills the oldest pending reservation for the book
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateLoanReq  true  "Loan payload"
// @Success      201  {object}  map[string]any
// @Failure      404  {object}  map[string]any "user or book not found"
// @Failure      409  {object}  map[string]any "book unavailable or active loan exists"
// @Router       /api/v1/loans [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "validation error", "errors": err.Error()})
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid userId"})
	}
	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid bookId"})
	}

	l, err := h.Svc.Create(c.Request().Context(), userID, bookID, req.DueDate)
	if err != nil {
		return h.fail(c, "loan create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "data": echo.Map{"loan": l}})
}

// PATCH /api/v1/loans/:id  (admin, librarian)
func (h *Controller) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	var req UpdateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "validation error", "errors": err.Error()})
	}

	patch := loansvc.UpdatePatch{
		DueDate:    req.DueDate,
		ReturnDate: req.ReturnDate,
	}
	if req.Status != nil {
		st := model.LoanStatus(*req.Status)
		patch.Status = &st
	}

	l, err := h.Svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return h.fail(c, "loan update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"loan": l}})
}

// GET /api/v1/loans  (admin, librarian)
func (h *Controller) List(c echo.Context) error {
	f, ok := h.filterFrom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid filter"})
	}

	loans, total, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, "loan list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(loans),
		"pagination": echo.Map{
			"page":         f.Page,
			"limit":        f.Limit,
			"totalPages":   totalPages(total, f.Limit),
			"totalResults": total,
		},
		"data": echo.Map{"loans": loans},
	})
}

// GET /api/v1/loans/:id  (admin, librarian)
func (h *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	l, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "loan detail", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"loan": l}})
}

// GET /api/v1/loans/my-loans
func (h *Controller) MyLoans(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "not authenticated"})
	}

	page, limit := pageParams(c)
	f := loanrepo.Filter{
		Status: c.QueryParam("status"),
		UserID: &uid,
		Page:   page,
		Limit:  limit,
	}

	loans, total, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, "my loans", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(loans),
		"pagination": echo.Map{
			"page":         page,
			"limit":        limit,
			"totalPages":   totalPages(total, limit),
			"totalResults": total,
		},
		"data": echo.Map{"loans": loans},
	})
}

func (h *Controller) filterFrom(c echo.Context) (loanrepo.Filter, bool) {
	page, limit := pageParams(c)
	f := loanrepo.Filter{
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	}
	if s := c.QueryParam("userId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, false
		}
		f.UserID = &id
	}
	if s := c.QueryParam("bookId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, false
		}
		f.BookID = &id
	}
	return f, true
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
