// Package reservation manages the reservation queue. Reservations never
// hold stock; they only record intent, resolved by loan creation.
// PENDING is the only state with outgoing transitions.
package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AlmamyHaidara/biblioteque/model"
	bookrepo "github.com/AlmamyHaidara/biblioteque/repository/book"
	loanrepo "github.com/AlmamyHaidara/biblioteque/repository/loan"
	reservationrepo "github.com/AlmamyHaidara/biblioteque/repository/reservation"
	userrepo "github.com/AlmamyHaidara/biblioteque/repository/user"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service interface {
	Create(ctx context.Context, userID, bookID uuid.UUID) (*model.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) (*model.Reservation, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	List(ctx context.Context, f reservationrepo.Filter) ([]model.Reservation, int64, error)
}

type service struct {
	tx           TxRunner
	reservations reservationrepo.Repo
	users        userrepo.Repo
	books        bookrepo.Repo
	loans        loanrepo.Repo
	now          func() time.Time
}

func New(tx TxRunner, reservations reservationrepo.Repo, users userrepo.Repo, books bookrepo.Repo, loans loanrepo.Repo) Service {
	return &service{
		tx:           tx,
		reservations: reservations,
		users:        users,
		books:        books,
		loans:        loans,
		now:          time.Now,
	}
}

func (s *service) Create(ctx context.Context, userID, bookID uuid.UUID) (*model.Reservation, error) {
	var created *model.Reservation

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.ByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("user not found")
		}

		b, err := s.books.ByID(ctx, bookID)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound("book not found")
		}

		pending, err := s.reservations.FindPending(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if pending != nil {
			return apperr.Conflict("user already has a pending reservation for this book")
		}

		// A user holding the book cannot also queue for it.
		active, err := s.loans.FindActive(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperr.Conflict("user already has an active loan for this book")
		}

		res := &model.Reservation{
			UserID:          userID,
			BookID:          bookID,
			ReservationDate: s.now().UTC(),
			Status:          model.ReservationPending,
		}
		if err := s.reservations.Insert(ctx, res); err != nil {
			return apperr.MapUnique(err, "user already has a pending reservation for this book")
		}

		res.User = &model.UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
		res.Book = &model.BookSummary{ID: b.ID, Title: b.Title, Author: b.Author, ISBN: b.ISBN}
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Cancel transitions PENDING -> CANCELLED. Terminal states are absorbing:
// cancelling a fulfilled or cancelled reservation is a conflict that names
// the current status.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res == nil {
			return apperr.NotFound("reservation not found")
		}
		if res.Status != model.ReservationPending {
			return apperr.Conflict(fmt.Sprintf(
				"reservation cannot be cancelled because it is already %s",
				strings.ToLower(string(res.Status))))
		}
		return s.reservations.UpdateStatus(ctx, id, model.ReservationCancelled)
	})
}

// UpdateStatus is the staff-facing transition. Only PENDING reservations
// may move, to FULFILLED or CANCELLED.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) (*model.Reservation, error) {
	var updated *model.Reservation

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res == nil {
			return apperr.NotFound("reservation not found")
		}
		if res.Status != model.ReservationPending {
			return apperr.Conflict(fmt.Sprintf(
				"reservation is already %s", strings.ToLower(string(res.Status))))
		}
		if err := s.reservations.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		full, err := s.reservations.ByID(ctx, id)
		if err != nil {
			return err
		}
		updated = full
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperr.NotFound("reservation not found")
	}
	return res, nil
}

func (s *service) List(ctx context.Context, f reservationrepo.Filter) ([]model.Reservation, int64, error) {
	return s.reservations.List(ctx, f)
}
