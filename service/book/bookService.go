package book

import (
	"context"

	"github.com/google/uuid"

	"github.com/AlmamyHaidara/biblioteque/model"
	bookrepo "github.com/AlmamyHaidara/biblioteque/repository/book"
	categoryrepo "github.com/AlmamyHaidara/biblioteque/repository/category"
	loanrepo "github.com/AlmamyHaidara/biblioteque/repository/loan"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

// CreateInput mirrors the validated create payload.
type CreateInput struct {
	Title           string
	Author          string
	ISBN            string
	PublicationYear int
	Publisher       string
	Description     string
	Quantity        int
	CategoryID      uuid.UUID
	CoverImage      *string
}

// UpdatePatch carries the optional fields of a book update.
type UpdatePatch struct {
	Title           *string
	Author          *string
	ISBN            *string
	PublicationYear *int
	Publisher       *string
	Description     *string
	Quantity        *int
	CategoryID      *uuid.UUID
	CoverImage      *string
}

type Service interface {
	List(ctx context.Context, f bookrepo.Filter) ([]model.Book, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Book, error)
	Create(ctx context.Context, in CreateInput) (*model.Book, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*model.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	books      bookrepo.Repo
	categories categoryrepo.Repo
	loans      loanrepo.Repo
}

func New(books bookrepo.Repo, categories categoryrepo.Repo, loans loanrepo.Repo) Service {
	return &service{books: books, categories: categories, loans: loans}
}

func (s *service) List(ctx context.Context, f bookrepo.Filter) ([]model.Book, int64, error) {
	return s.books.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := s.books.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFound("book not found")
	}
	return b, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*model.Book, error) {
	cat, err := s.categories.ByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound("category not found")
	}

	dup, err := s.books.ByISBN(ctx, in.ISBN)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, apperr.Conflict("a book with this ISBN already exists")
	}

	b := &model.Book{
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		PublicationYear: in.PublicationYear,
		Publisher:       in.Publisher,
		Description:     in.Description,
		Quantity:        in.Quantity,
		CategoryID:      in.CategoryID,
		CoverImage:      in.CoverImage,
	}
	if err := s.books.Create(ctx, b); err != nil {
		return nil, apperr.MapUnique(err, "a book with this ISBN already exists")
	}
	b.Category = &model.CategorySummary{ID: cat.ID, Name: cat.Name}
	return b, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*model.Book, error) {
	b, err := s.books.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFound("book not found")
	}

	if patch.CategoryID != nil {
		cat, err := s.categories.ByID(ctx, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, apperr.NotFound("category not found")
		}
		b.CategoryID = *patch.CategoryID
		b.Category = &model.CategorySummary{ID: cat.ID, Name: cat.Name}
	}
	if patch.ISBN != nil && *patch.ISBN != b.ISBN {
		dup, err := s.books.ByISBN(ctx, *patch.ISBN)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, apperr.Conflict("a book with this ISBN already exists")
		}
		b.ISBN = *patch.ISBN
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.PublicationYear != nil {
		b.PublicationYear = *patch.PublicationYear
	}
	if patch.Publisher != nil {
		b.Publisher = *patch.Publisher
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	if patch.Quantity != nil {
		b.Quantity = *patch.Quantity
	}
	if patch.CoverImage != nil {
		b.CoverImage = patch.CoverImage
	}

	if err := s.books.Update(ctx, b); err != nil {
		return nil, apperr.MapUnique(err, "a book with this ISBN already exists")
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	b, err := s.books.ByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return apperr.NotFound("book not found")
	}

	active, err := s.loans.HasActiveForBook(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return apperr.Conflict("cannot delete book with active loans")
	}
	return s.books.Delete(ctx, id)
}
