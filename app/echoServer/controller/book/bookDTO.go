package book

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

type CreateBookReq struct {
	Title           string  `json:"title" validate:"required"`
	Author          string  `json:"author" validate:"required"`
	ISBN            string  `json:"isbn" validate:"required,min=10"`
	PublicationYear int     `json:"publicationYear" validate:"required,gte=1000"`
	Publisher       string  `json:"publisher" validate:"required"`
	Description     string  `json:"description" validate:"required"`
	Quantity        int     `json:"quantity" validate:"gte=0"`
	CategoryID      string  `json:"categoryId" validate:"required,uuid4"`
	CoverImage      *string `json:"coverImage"`
}

type UpdateBookReq struct {
	Title           *string `json:"title" validate:"omitempty,min=1"`
	Author          *string `json:"author" validate:"omitempty,min=1"`
	ISBN            *string `json:"isbn" validate:"omitempty,min=10"`
	PublicationYear *int    `json:"publicationYear" validate:"omitempty,gte=1000"`
	Publisher       *string `json:"publisher" validate:"omitempty,min=1"`
	Description     *string `json:"description" validate:"omitempty,min=1"`
	Quantity        *int    `json:"quantity" validate:"omitempty,gte=0"`
	CategoryID      *string `json:"categoryId" validate:"omitempty,uuid4"`
	CoverImage      *string `json:"coverImage"`
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
