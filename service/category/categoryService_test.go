package category

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AlmamyHaidara/biblioteque/model"
	bookrepo "github.com/AlmamyHaidara/biblioteque/repository/book"
	categoryrepo "github.com/AlmamyHaidara/biblioteque/repository/category"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

type mockCategories struct {
	createFn func(ctx context.Context, c *model.Category) error
	byIDFn   func(ctx context.Context, id uuid.UUID) (*model.Category, error)
	byNameFn func(ctx context.Context, name string) (*model.Category, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

var _ categoryrepo.Repo = (*mockCategories)(nil)

func (m *mockCategories) Create(ctx context.Context, c *model.Category) error {
	if m.createFn == nil {
		c.ID = uuid.New()
		return nil
	}
	return m.createFn(ctx, c)
}
func (m *mockCategories) ByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *mockCategories) ByName(ctx context.Context, name string) (*model.Category, error) {
	if m.byNameFn == nil {
		return nil, nil
	}
	return m.byNameFn(ctx, name)
}
func (m *mockCategories) List(ctx context.Context, page, limit int) ([]model.Category, int64, error) {
	return nil, 0, nil
}
func (m *mockCategories) Update(ctx context.Context, c *model.Category) error { return nil }
func (m *mockCategories) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

type mockBooks struct {
	countFn func(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

var _ bookrepo.Repo = (*mockBooks)(nil)

func (m *mockBooks) Create(ctx context.Context, b *model.Book) error { return nil }
func (m *mockBooks) ByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return nil, nil
}
func (m *mockBooks) ByISBN(ctx context.Context, isbn string) (*model.Book, error) { return nil, nil }
func (m *mockBooks) List(ctx context.Context, f bookrepo.Filter) ([]model.Book, int64, error) {
	return nil, 0, nil
}
func (m *mockBooks) Update(ctx context.Context, b *model.Book) error { return nil }
func (m *mockBooks) Delete(ctx context.Context, id uuid.UUID) error  { return nil }
func (m *mockBooks) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	if m.countFn == nil {
		return 0, nil
	}
	return m.countFn(ctx, categoryID)
}
func (m *mockBooks) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return nil, nil
}
func (m *mockBooks) DecrementQuantity(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}
func (m *mockBooks) IncrementQuantity(ctx context.Context, id uuid.UUID) error { return nil }

func TestCreate_Success(t *testing.T) {
	svc := New(&mockCategories{}, &mockBooks{})

	desc := "Space operas and such"
	c, err := svc.Create(context.Background(), "Sci-Fi", &desc)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, c.ID)
	require.Equal(t, "Sci-Fi", c.Name)
}

func TestCreate_DuplicateName(t *testing.T) {
	cats := &mockCategories{
		byNameFn: func(ctx context.Context, name string) (*model.Category, error) {
			return &model.Category{ID: uuid.New(), Name: name}, nil
		},
	}
	svc := New(cats, &mockBooks{})

	_, err := svc.Create(context.Background(), "Sci-Fi", nil)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUpdate_NameConflict(t *testing.T) {
	id := uuid.New()
	cats := &mockCategories{
		byIDFn: func(ctx context.Context, got uuid.UUID) (*model.Category, error) {
			return &model.Category{ID: id, Name: "Old"}, nil
		},
		byNameFn: func(ctx context.Context, name string) (*model.Category, error) {
			return &model.Category{ID: uuid.New(), Name: name}, nil
		},
	}
	svc := New(cats, &mockBooks{})

	name := "Taken"
	_, err := svc.Update(context.Background(), id, UpdatePatch{Name: &name})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestDelete_WithBooks(t *testing.T) {
	id := uuid.New()
	cats := &mockCategories{
		byIDFn: func(ctx context.Context, got uuid.UUID) (*model.Category, error) {
			return &model.Category{ID: id, Name: "Sci-Fi"}, nil
		},
	}
	books := &mockBooks{
		countFn: func(ctx context.Context, categoryID uuid.UUID) (int64, error) { return 7, nil },
	}
	svc := New(cats, books)

	err := svc.Delete(context.Background(), id)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	require.Contains(t, err.Error(), "7 books")
}

func TestDelete_Empty(t *testing.T) {
	id := uuid.New()
	var deleted uuid.UUID
	cats := &mockCategories{
		byIDFn: func(ctx context.Context, got uuid.UUID) (*model.Category, error) {
			return &model.Category{ID: id, Name: "Sci-Fi"}, nil
		},
		deleteFn: func(ctx context.Context, got uuid.UUID) error {
			deleted = got
			return nil
		},
	}
	svc := New(cats, &mockBooks{})

	require.NoError(t, svc.Delete(context.Background(), id))
	require.Equal(t, id, deleted)
}

func TestGet_NotFound(t *testing.T) {
	svc := New(&mockCategories{}, &mockBooks{})
	_, err := svc.Get(context.Background(), uuid.New())
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
