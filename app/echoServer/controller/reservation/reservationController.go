package reservation

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AlmamyHaidara/biblioteque/app/echoServer/jwtx"
	"github.com/AlmamyHaidara/biblioteque/model"
	reservationrepo "github.com/AlmamyHaidara/biblioteque/repository/reservation"
	reservationsvc "github.com/AlmamyHaidara/biblioteque/service/reservation"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

type Controller struct {
	Svc reservationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Create a reservation
// @Summary      Create reservation
// @Description  Queues a PENDING reservation. Reservations do not hold stock.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateReservationReq  true  "Reservation payload"
// @Success      201  {object}  map[string]any
// @Failure      404  {object}  map[string]any "user or book not found"
// @Failure      409  {object}  map[string]any "pending reservation or active loan exists"
// @Router       /api/v1/reservations [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateReservationReq
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

	res, err := h.Svc.Create(c.Request().Context(), userID, bookID)
	if err != nil {
		return h.fail(c, "reservation create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "data": echo.Map{"reservation": res}})
}

// DELETE /api/v1/reservations/:id  (owner or staff, enforced in routes)
func (h *Controller) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	if err := h.Svc.Cancel(c.Request().Context(), id); err != nil {
		return h.fail(c, "reservation cancel", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"message": "reservation cancelled"},
	})
}

// PATCH /api/v1/reservations/:id  (admin, librarian)
func (h *Controller) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	var req UpdateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "validation error", "errors": err.Error()})
	}

	res, err := h.Svc.UpdateStatus(c.Request().Context(), id, model.ReservationStatus(req.Status))
	if err != nil {
		return h.fail(c, "reservation update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"reservation": res}})
}

// GET /api/v1/reservations  (admin, librarian)
func (h *Controller) List(c echo.Context) error {
	f, ok := h.filterFrom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid filter"})
	}

	reservations, total, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, "reservation list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(reservations),
		"pagination": echo.Map{
			"page":         f.Page,
			"limit":        f.Limit,
			"totalPages":   totalPages(total, f.Limit),
			"totalResults": total,
		},
		"data": echo.Map{"reservations": reservations},
	})
}

// GET /api/v1/reservations/:id  (admin, librarian)
func (h *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "invalid id"})
	}
	res, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "reservation detail", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"reservation": res}})
}

// GET /api/v1/reservations/my-reservations
func (h *Controller) MyReservations(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "not authenticated"})
	}

	page, limit := pageParams(c)
	f := reservationrepo.Filter{
		Status: c.QueryParam("status"),
		UserID: &uid,
		Page:   page,
		Limit:  limit,
	}

	reservations, total, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, "my reservations", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(reservations),
		"pagination": echo.Map{
			"page":         page,
			"limit":        limit,
			"totalPages":   totalPages(total, limit),
			"totalResults": total,
		},
		"data": echo.Map{"reservations": reservations},
	})
}

func (h *Controller) filterFrom(c echo.Context) (reservationrepo.Filter, bool) {
	page, limit := pageParams(c)
	f := reservationrepo.Filter{
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
