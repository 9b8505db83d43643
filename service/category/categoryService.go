package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AlmamyHaidara/biblioteque/model"
	bookrepo "github.com/AlmamyHaidara/biblioteque/repository/book"
	categoryrepo "github.com/AlmamyHaidara/biblioteque/repository/category"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

// UpdatePatch carries the optional fields of a category update.
type UpdatePatch struct {
	Name        *string
	Description *string
}

type Service interface {
	List(ctx context.Context, page, limit int) ([]model.Category, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Create(ctx context.Context, name string, description *string) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	categories categoryrepo.Repo
	books      bookrepo.Repo
}

func New(categories categoryrepo.Repo, books bookrepo.Repo) Service {
	return &service{categories: categories, books: books}
}

func (s *service) List(ctx context.Context, page, limit int) ([]model.Category, int64, error) {
	return s.categories.List(ctx, page, limit)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := s.categories.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("category not found")
	}
	return c, nil
}

func (s *service) Create(ctx context.Context, name string, description *string) (*model.Category, error) {
	dup, err := s.categories.ByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, apperr.Conflict("a category with this name already exists")
	}

	c := &model.Category{Name: name, Description: description}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, apperr.MapUnique(err, "a category with this name already exists")
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*model.Category, error) {
	c, err := s.categories.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("category not found")
	}

	if patch.Name != nil && *patch.Name != c.Name {
		dup, err := s.categories.ByName(ctx, *patch.Name)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, apperr.Conflict("a category with this name already exists")
		}
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = patch.Description
	}

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, apperr.MapUnique(err, "a category with this name already exists")
	}
	return c, nil
}

// Delete refuses while the category still owns books.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.categories.ByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.NotFound("category not found")
	}

	n, err := s.books.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict(fmt.Sprintf(
			"cannot delete category with associated books. The category has %d books", n))
	}
	return s.categories.Delete(ctx, id)
}
