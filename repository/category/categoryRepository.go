package categoryrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AlmamyHaidara/biblioteque/model"
	"github.com/AlmamyHaidara/biblioteque/util/database"
)

type Repo interface {
	Create(ctx context.Context, c *model.Category) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	ByName(ctx context.Context, name string) (*model.Category, error)
	List(ctx context.Context, page, limit int) ([]model.Category, int64, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const categoryCols = `id, name, description, created_at, updated_at`

func scanCategory(row pgx.Row) (*model.Category, error) {
	c := &model.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *repo) Create(ctx context.Context, c *model.Category) error {
	return r.db.Querier(ctx).QueryRow(ctx, `
		INSERT INTO categories (name, description)
		VALUES ($1,$2)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Description,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return scanCategory(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+categoryCols+` FROM categories WHERE id = $1`, id))
}

func (r *repo) ByName(ctx context.Context, name string) (*model.Category, error) {
	return scanCategory(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+categoryCols+` FROM categories WHERE lower(name) = lower($1)`, name))
}

func (r *repo) List(ctx context.Context, page, limit int) ([]model.Category, int64, error) {
	var total int64
	if err := r.db.Querier(ctx).QueryRow(ctx, `SELECT count(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT `+categoryCols+` FROM categories ORDER BY name ASC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repo) Update(ctx context.Context, c *model.Category) error {
	return r.db.Querier(ctx).QueryRow(ctx, `
		UPDATE categories
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Name, c.Description,
	).Scan(&c.UpdatedAt)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}
