package reservation

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

type CreateReservationReq struct {
	UserID string `json:"userId" validate:"required,uuid4"`
	BookID string `json:"bookId" validate:"required,uuid4"`
}

type UpdateReservationReq struct {
	Status string `json:"status" validate:"required,oneof=FULFILLED CANCELLED"`
}

func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func totalPages(total int64, limit int) int64 {
	return (total + int64(limit) - 1) / int64(limit)
}
