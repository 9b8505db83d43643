// Package loan implements the inventory ledger: loan creation decrements
// book stock and fulfills the oldest pending reservation, returning a loan
// restores stock exactly once. Every multi-row mutation runs inside a
// single transaction with the book row locked first.
package loan

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AlmamyHaidara/biblioteque/model"
	bookrepo "github.com/AlmamyHaidara/biblioteque/repository/book"
	loanrepo "github.com/AlmamyHaidara/biblioteque/repository/loan"
	reservationrepo "github.com/AlmamyHaidara/biblioteque/repository/reservation"
	userrepo "github.com/AlmamyHaidara/biblioteque/repository/user"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

// TxRunner runs fn inside one transaction, committing on nil and rolling
// back otherwise. Satisfied by *database.DB.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UpdatePatch carries the optional fields of a loan update. Nil means
// "leave unchanged".
type UpdatePatch struct {
	DueDate    *time.Time
	Status     *model.LoanStatus
	ReturnDate *time.Time
}

type Service interface {
	Create(ctx context.Context, userID, bookID uuid.UUID, dueDate time.Time) (*model.Loan, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*model.Loan, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	List(ctx context.Context, f loanrepo.Filter) ([]model.Loan, int64, error)
}

type service struct {
	tx           TxRunner
	loans        loanrepo.Repo
	books        bookrepo.Repo
	users        userrepo.Repo
	reservations reservationrepo.Repo
	now          func() time.Time
}

func New(tx TxRunner, loans loanrepo.Repo, books bookrepo.Repo, users userrepo.Repo, reservations reservationrepo.Repo) Service {
	return &service{
		tx:           tx,
		loans:        loans,
		books:        books,
		users:        users,
		reservations: reservations,
		now:          time.Now,
	}
}

// Create inserts an ACTIVE loan, decrements the book quantity and fulfills
// the oldest pending reservation for the book, all or nothing.
func (s *service) Create(ctx context.Context, userID, bookID uuid.UUID, dueDate time.Time) (*model.Loan, error) {
	var created *model.Loan

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.ByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("user not found")
		}

		// Lock the book row before any check so two concurrent creates on
		// the same book serialize and cannot both see quantity > 0.
		b, err := s.books.GetForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound("book not found")
		}
		if b.Quantity <= 0 {
			return apperr.Conflict("book is not available for loan")
		}

		existing, err := s.loans.FindActive(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict("user already has an active loan for this book")
		}

		l := &model.Loan{
			UserID:   userID,
			BookID:   bookID,
			LoanDate: s.now().UTC(),
			DueDate:  dueDate,
			Status:   model.LoanActive,
		}
		if err := s.loans.Insert(ctx, l); err != nil {
			return apperr.MapUnique(err, "user already has an active loan for this book")
		}

		ok, err := s.books.DecrementQuantity(ctx, bookID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("book is not available for loan")
		}

		// At most one reservation flips per loan: the pending one with the
		// earliest reservation date, ties broken by insertion order.
		res, err := s.reservations.OldestPendingForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if res != nil {
			if err := s.reservations.UpdateStatus(ctx, res.ID, model.ReservationFulfilled); err != nil {
				return err
			}
		}

		l.User = &model.UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
		l.Book = &model.BookSummary{ID: b.ID, Title: b.Title, Author: b.Author, ISBN: b.ISBN}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies a patch to a loan. The ACTIVE/OVERDUE -> RETURNED
// transition sets the return date and increments the book quantity; a
// repeated RETURNED patch changes neither (the return side effect is
// idempotent). Field-only patches have no inventory effect.
func (s *service) Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*model.Loan, error) {
	var updated *model.Loan

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		l, err := s.loans.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return apperr.NotFound("loan not found")
		}

		alreadyReturned := l.Status == model.LoanReturned
		returning := patch.Status != nil && *patch.Status == model.LoanReturned && !alreadyReturned

		if patch.DueDate != nil {
			l.DueDate = *patch.DueDate
		}
		if patch.Status != nil && !alreadyReturned {
			l.Status = *patch.Status
		}
		if returning {
			rd := s.now().UTC()
			if patch.ReturnDate != nil {
				rd = *patch.ReturnDate
			}
			l.ReturnDate = &rd
			if err := s.books.IncrementQuantity(ctx, l.BookID); err != nil {
				return err
			}
		} else if patch.ReturnDate != nil && !alreadyReturned {
			l.ReturnDate = patch.ReturnDate
		}

		if err := s.loans.Update(ctx, l); err != nil {
			return err
		}

		full, err := s.loans.ByID(ctx, l.ID)
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

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	l, err := s.loans.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apperr.NotFound("loan not found")
	}
	return l, nil
}

func (s *service) List(ctx context.Context, f loanrepo.Filter) ([]model.Loan, int64, error) {
	return s.loans.List(ctx, f)
}
