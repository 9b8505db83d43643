package model

import (
	"time"

	"github.com/google/uuid"
)

type Book struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Author          string           `json:"author"`
	ISBN            string           `json:"isbn"`
	PublicationYear int              `json:"publicationYear"`
	Publisher       string           `json:"publisher"`
	Description     string           `json:"description"`
	Quantity        int              `json:"quantity"`
	CategoryID      uuid.UUID        `json:"categoryId"`
	CoverImage      *string          `json:"coverImage,omitempty"`
	Category        *CategorySummary `json:"category,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// BookSummary is the denormalized shape embedded in loans and reservations.
type BookSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	ISBN   string    `json:"isbn"`
}
