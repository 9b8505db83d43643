package book

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AlmamyHaidara/biblioteque/model"
	bookrepo "github.com/AlmamyHaidara/biblioteque/repository/book"
	categoryrepo "github.com/AlmamyHaidara/biblioteque/repository/category"
	loanrepo "github.com/AlmamyHaidara/biblioteque/repository/loan"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
)

type mockBooks struct {
	createFn func(ctx context.Context, b *model.Book) error
	byIDFn   func(ctx context.Context, id uuid.UUID) (*model.Book, error)
	byISBNFn func(ctx context.Context, isbn string) (*model.Book, error)
	updateFn func(ctx context.Context, b *model.Book) error
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

var _ bookrepo.Repo = (*mockBooks)(nil)

func (m *mockBooks) Create(ctx context.Context, b *model.Book) error {
	if m.createFn == nil {
		b.ID = uuid.New()
		return nil
	}
	return m.createFn(ctx, b)
}
func (m *mockBooks) ByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *mockBooks) ByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	if m.byISBNFn == nil {
		return nil, nil
	}
	return m.byISBNFn(ctx, isbn)
}
func (m *mockBooks) List(ctx context.Context, f bookrepo.Filter) ([]model.Book, int64, error) {
	return nil, 0, nil
}
func (m *mockBooks) Update(ctx context.Context, b *model.Book) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, b)
}
func (m *mockBooks) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}
func (m *mockBooks) CountByCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	return 0, nil
}
func (m *mockBooks) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return nil, nil
}
func (m *mockBooks) DecrementQuantity(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}
func (m *mockBooks) IncrementQuantity(ctx context.Context, id uuid.UUID) error { return nil }

type mockCategories struct {
	byIDFn func(ctx context.Context, id uuid.UUID) (*model.Category, error)
}

var _ categoryrepo.Repo = (*mockCategories)(nil)

func (m *mockCategories) Create(ctx context.Context, c *model.Category) error { return nil }
func (m *mockCategories) ByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *mockCategories) ByName(ctx context.Context, name string) (*model.Category, error) {
	return nil, nil
}
func (m *mockCategories) List(ctx context.Context, page, limit int) ([]model.Category, int64, error) {
	return nil, 0, nil
}
func (m *mockCategories) Update(ctx context.Context, c *model.Category) error { return nil }
func (m *mockCategories) Delete(ctx context.Context, id uuid.UUID) error      { return nil }

type mockLoans struct {
	hasActiveFn func(ctx context.Context, bookID uuid.UUID) (bool, error)
}

var _ loanrepo.Repo = (*mockLoans)(nil)

func (m *mockLoans) Insert(ctx context.Context, l *model.Loan) error { return nil }
func (m *mockLoans) ByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return nil, nil
}
func (m *mockLoans) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return nil, nil
}
func (m *mockLoans) FindActive(ctx context.Context, userID, bookID uuid.UUID) (*model.Loan, error) {
	return nil, nil
}
func (m *mockLoans) HasActiveForBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	if m.hasActiveFn == nil {
		return false, nil
	}
	return m.hasActiveFn(ctx, bookID)
}
func (m *mockLoans) Update(ctx context.Context, l *model.Loan) error { return nil }
func (m *mockLoans) List(ctx context.Context, f loanrepo.Filter) ([]model.Loan, int64, error) {
	return nil, 0, nil
}
func (m *mockLoans) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func knownCategory(id uuid.UUID) *mockCategories {
	return &mockCategories{byIDFn: func(ctx context.Context, got uuid.UUID) (*model.Category, error) {
		if got == id {
			return &model.Category{ID: id, Name: "Sci-Fi"}, nil
		}
		return nil, nil
	}}
}

func TestCreate_Success(t *testing.T) {
	catID := uuid.New()
	svc := New(&mockBooks{}, knownCategory(catID), &mockLoans{})

	b, err := svc.Create(context.Background(), CreateInput{
		Title:      "Dune",
		Author:     "Frank Herbert",
		ISBN:       "9780441013593",
		Quantity:   3,
		CategoryID: catID,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, b.ID)
	require.NotNil(t, b.Category)
	require.Equal(t, "Sci-Fi", b.Category.Name)
}

func TestCreate_UnknownCategory(t *testing.T) {
	svc := New(&mockBooks{}, &mockCategories{}, &mockLoans{})

	_, err := svc.Create(context.Background(), CreateInput{Title: "Dune", CategoryID: uuid.New()})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreate_DuplicateISBN(t *testing.T) {
	catID := uuid.New()
	books := &mockBooks{
		byISBNFn: func(ctx context.Context, isbn string) (*model.Book, error) {
			return &model.Book{ID: uuid.New(), ISBN: isbn}, nil
		},
	}
	svc := New(books, knownCategory(catID), &mockLoans{})

	_, err := svc.Create(context.Background(), CreateInput{Title: "Dune", ISBN: "dup", CategoryID: catID})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUpdate_ISBNConflict(t *testing.T) {
	id := uuid.New()
	books := &mockBooks{
		byIDFn: func(ctx context.Context, got uuid.UUID) (*model.Book, error) {
			return &model.Book{ID: id, ISBN: "old"}, nil
		},
		byISBNFn: func(ctx context.Context, isbn string) (*model.Book, error) {
			return &model.Book{ID: uuid.New(), ISBN: isbn}, nil
		},
	}
	svc := New(books, &mockCategories{}, &mockLoans{})

	isbn := "taken"
	_, err := svc.Update(context.Background(), id, UpdatePatch{ISBN: &isbn})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUpdate_SameISBNSkipsLookup(t *testing.T) {
	id := uuid.New()
	books := &mockBooks{
		byIDFn: func(ctx context.Context, got uuid.UUID) (*model.Book, error) {
			return &model.Book{ID: id, ISBN: "same"}, nil
		},
		byISBNFn: func(ctx context.Context, isbn string) (*model.Book, error) {
			t.Fatal("unexpected ISBN lookup")
			return nil, nil
		},
	}
	svc := New(books, &mockCategories{}, &mockLoans{})

	isbn := "same"
	title := "New Title"
	b, err := svc.Update(context.Background(), id, UpdatePatch{ISBN: &isbn, Title: &title})
	require.NoError(t, err)
	require.Equal(t, "New Title", b.Title)
}

func TestDelete_ActiveLoans(t *testing.T) {
	id := uuid.New()
	books := &mockBooks{
		byIDFn: func(ctx context.Context, got uuid.UUID) (*model.Book, error) {
			return &model.Book{ID: id}, nil
		},
	}
	loans := &mockLoans{
		hasActiveFn: func(ctx context.Context, bookID uuid.UUID) (bool, error) { return true, nil },
	}
	svc := New(books, &mockCategories{}, loans)

	err := svc.Delete(context.Background(), id)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestDelete_Success(t *testing.T) {
	id := uuid.New()
	var deleted uuid.UUID
	books := &mockBooks{
		byIDFn: func(ctx context.Context, got uuid.UUID) (*model.Book, error) {
			return &model.Book{ID: id}, nil
		},
		deleteFn: func(ctx context.Context, got uuid.UUID) error {
			deleted = got
			return nil
		},
	}
	svc := New(books, &mockCategories{}, &mockLoans{})

	require.NoError(t, svc.Delete(context.Background(), id))
	require.Equal(t, id, deleted)
}

func TestGet_NotFound(t *testing.T) {
	svc := New(&mockBooks{}, &mockCategories{}, &mockLoans{})
	_, err := svc.Get(context.Background(), uuid.New())
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
