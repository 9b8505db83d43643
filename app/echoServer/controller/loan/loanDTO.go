package loan

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type CreateLoanReq struct {
	UserID  string    `json:"userId" validate:"required,uuid4"`
	BookID  string    `json:"bookId" validate:"required,uuid4"`
	DueDate time.Time `json:"dueDate" validate:"required"`
}

type UpdateLoanReq struct {
	DueDate    *time.Time `json:"dueDate"`
	Status     *string    `json:"status" validate:"omitempty,oneof=ACTIVE RETURNED OVERDUE"`
	ReturnDate *time.Time `json:"returnDate"`
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
