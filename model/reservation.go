package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationFulfilled ReservationStatus = "FULFILLED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

type Reservation struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"userId"`
	BookID          uuid.UUID         `json:"bookId"`
	ReservationDate time.Time         `json:"reservationDate"`
	Status          ReservationStatus `json:"status"`
	User            *UserSummary      `json:"user,omitempty"`
	Book            *BookSummary      `json:"book,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}
