package bookrepo

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AlmamyHaidara/biblioteque/model"
	"github.com/AlmamyHaidara/biblioteque/util/database"
)

// Filter narrows List; zero values mean "no filter".
type Filter struct {
	Title     string
	Author    string
	Category  string
	Available bool
	Page      int
	Limit     int
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	ByISBN(ctx context.Context, isbn string) (*model.Book, error)
	List(ctx context.Context, f Filter) ([]model.Book, int64, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)

	// Ledger primitives. GetForUpdate locks the row so concurrent loan
	// creation on the same book serializes; DecrementQuantity re-checks
	// quantity > 0 in the UPDATE predicate as a second guard.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Book, error)
	DecrementQuantity(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementQuantity(ctx context.Context, id uuid.UUID) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

var dialect = goqu.Dialect("postgres")

const bookCols = `b.id, b.title, b.author, b.isbn, b.publication_year, b.publisher,
	b.description, b.quantity, b.category_id, b.cover_image, b.created_at, b.updated_at,
	c.id, c.name`

func scanBook(row pgx.Row) (*model.Book, error) {
	b := &model.Book{Category: &model.CategorySummary{}}
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublicationYear, &b.Publisher,
		&b.Description, &b.Quantity, &b.CategoryID, &b.CoverImage, &b.CreatedAt, &b.UpdatedAt,
		&b.Category.ID, &b.Category.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	return r.db.Querier(ctx).QueryRow(ctx, `
		INSERT INTO books (title, author, isbn, publication_year, publisher, description, quantity, category_id, cover_image)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`,
		b.Title, b.Author, b.ISBN, b.PublicationYear, b.Publisher, b.Description, b.Quantity, b.CategoryID, b.CoverImage,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return scanBook(r.db.Querier(ctx).QueryRow(ctx, `
		SELECT `+bookCols+`
		FROM books b JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1`, id))
}

func (r *repo) ByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	return scanBook(r.db.Querier(ctx).QueryRow(ctx, `
		SELECT `+bookCols+`
		FROM books b JOIN categories c ON c.id = b.category_id
		WHERE b.isbn = $1`, isbn))
}

// List builds the filtered query with goqu so optional predicates stay readable.
func (r *repo) List(ctx context.Context, f Filter) ([]model.Book, int64, error) {
	base := dialect.From(goqu.T("books").As("b")).
		Join(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("b.category_id"))))

	if f.Title != "" {
		base = base.Where(goqu.I("b.title").ILike("%" + f.Title + "%"))
	}
	if f.Author != "" {
		base = base.Where(goqu.I("b.author").ILike("%" + f.Author + "%"))
	}
	if f.Category != "" {
		base = base.Where(goqu.I("c.name").ILike("%" + f.Category + "%"))
	}
	if f.Available {
		base = base.Where(goqu.I("b.quantity").Gt(0))
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.Querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL, listArgs, err := base.
		Select(
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author"), goqu.I("b.isbn"),
			goqu.I("b.publication_year"), goqu.I("b.publisher"), goqu.I("b.description"),
			goqu.I("b.quantity"), goqu.I("b.category_id"), goqu.I("b.cover_image"),
			goqu.I("b.created_at"), goqu.I("b.updated_at"),
			goqu.I("c.id"), goqu.I("c.name"),
		).
		Order(goqu.I("b.title").Asc(), goqu.I("b.id").Asc()).
		Limit(uint(f.Limit)).
		Offset(uint((f.Page - 1) * f.Limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Querier(ctx).Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b := model.Book{Category: &model.CategorySummary{}}
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublicationYear, &b.Publisher,
			&b.Description, &b.Quantity, &b.CategoryID, &b.CoverImage, &b.CreatedAt, &b.UpdatedAt,
			&b.Category.ID, &b.Category.Name,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	return r.db.Querier(ctx).QueryRow(ctx, `
		UPDATE books
		SET title = $2, author = $3, isbn = $4, publication_year = $5, publisher = $6,
		    description = $7, quantity = $8, category_id = $9, cover_image = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		b.ID, b.Title, b.Author, b.ISBN, b.PublicationYear, b.Publisher,
		b.Description, b.Quantity, b.CategoryID, b.CoverImage,
	).Scan(&b.UpdatedAt)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	return err
}

func (r *repo) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.Querier(ctx).QueryRow(ctx,
		`SELECT count(*) FROM books WHERE category_id = $1`, categoryID).Scan(&n)
	return n, err
}

func (r *repo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b := &model.Book{}
	err := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT id, title, author, isbn, publication_year, publisher, description,
		       quantity, category_id, cover_image, created_at, updated_at
		FROM books
		WHERE id = $1
		FOR UPDATE`, id,
	).Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublicationYear, &b.Publisher,
		&b.Description, &b.Quantity, &b.CategoryID, &b.CoverImage, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *repo) DecrementQuantity(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE books
		SET quantity = quantity - 1, updated_at = now()
		WHERE id = $1 AND quantity > 0`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) IncrementQuantity(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE books
		SET quantity = quantity + 1, updated_at = now()
		WHERE id = $1`, id)
	return err
}
