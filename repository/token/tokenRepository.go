package tokenrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AlmamyHaidara/biblioteque/model"
	"github.com/AlmamyHaidara/biblioteque/util/database"
)

type Repo interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	Get(ctx context.Context, token string) (*model.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, t *model.RefreshToken) error {
	return r.db.Querier(ctx).QueryRow(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1,$2,$3)
		RETURNING created_at`,
		t.Token, t.UserID, t.ExpiresAt,
	).Scan(&t.CreatedAt)
}

func (r *repo) Get(ctx context.Context, token string) (*model.RefreshToken, error) {
	t := &model.RefreshToken{}
	err := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT token, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1`, token,
	).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *repo) Delete(ctx context.Context, token string) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (r *repo) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

func (r *repo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Querier(ctx).Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
