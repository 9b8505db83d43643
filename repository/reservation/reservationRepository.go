package reservationrepo

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

// Filter narrows List; nil/empty values mean "no filter".
type Filter struct {
	Status string
	UserID *uuid.UUID
	BookID *uuid.UUID
	Page   int
	Limit  int
}

type Repo interface {
	Insert(ctx context.Context, res *model.Reservation) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	FindPending(ctx context.Context, userID, bookID uuid.UUID) (*model.Reservation, error)

	// OldestPendingForUpdate locks and returns the pending reservation with
	// the earliest reservation_date (ties broken by id) for a book, or nil.
	OldestPendingForUpdate(ctx context.Context, bookID uuid.UUID) (*model.Reservation, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) error
	List(ctx context.Context, f Filter) ([]model.Reservation, int64, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

var dialect = goqu.Dialect("postgres")

const resCols = `id, user_id, book_id, reservation_date, status, created_at, updated_at`

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	res := &model.Reservation{}
	err := row.Scan(&res.ID, &res.UserID, &res.BookID, &res.ReservationDate, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (r *repo) Insert(ctx context.Context, res *model.Reservation) error {
	return r.db.Querier(ctx).QueryRow(ctx, `
		INSERT INTO reservations (user_id, book_id, reservation_date, status)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at, updated_at`,
		res.UserID, res.BookID, res.ReservationDate, res.Status,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res := &model.Reservation{User: &model.UserSummary{}, Book: &model.BookSummary{}}
	err := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT r.id, r.user_id, r.book_id, r.reservation_date, r.status, r.created_at, r.updated_at,
		       u.id, u.first_name, u.last_name, u.email,
		       b.id, b.title, b.author, b.isbn
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		JOIN books b ON b.id = r.book_id
		WHERE r.id = $1`, id,
	).Scan(
		&res.ID, &res.UserID, &res.BookID, &res.ReservationDate, &res.Status, &res.CreatedAt, &res.UpdatedAt,
		&res.User.ID, &res.User.FirstName, &res.User.LastName, &res.User.Email,
		&res.Book.ID, &res.Book.Title, &res.Book.Author, &res.Book.ISBN,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (r *repo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return scanReservation(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+resCols+` FROM reservations WHERE id = $1 FOR UPDATE`, id))
}

func (r *repo) FindPending(ctx context.Context, userID, bookID uuid.UUID) (*model.Reservation, error) {
	return scanReservation(r.db.Querier(ctx).QueryRow(ctx, `
		SELECT `+resCols+`
		FROM reservations
		WHERE user_id = $1 AND book_id = $2 AND status = 'PENDING'`,
		userID, bookID))
}

func (r *repo) OldestPendingForUpdate(ctx context.Context, bookID uuid.UUID) (*model.Reservation, error) {
	return scanReservation(r.db.Querier(ctx).QueryRow(ctx, `
		SELECT `+resCols+`
		FROM reservations
		WHERE book_id = $1 AND status = 'PENDING'
		ORDER BY reservation_date ASC, id ASC
		LIMIT 1
		FOR UPDATE`, bookID))
}

func (r *repo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) error {
	_, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE reservations SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	return err
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.Reservation, int64, error) {
	base := dialect.From(goqu.T("reservations").As("r")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("r.user_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("r.book_id"))))

	if f.Status != "" {
		base = base.Where(goqu.I("r.status").Eq(f.Status))
	}
	if f.UserID != nil {
		base = base.Where(goqu.I("r.user_id").Eq(*f.UserID))
	}
	if f.BookID != nil {
		base = base.Where(goqu.I("r.book_id").Eq(*f.BookID))
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
			goqu.I("r.id"), goqu.I("r.user_id"), goqu.I("r.book_id"), goqu.I("r.reservation_date"),
			goqu.I("r.status"), goqu.I("r.created_at"), goqu.I("r.updated_at"),
			goqu.I("u.id"), goqu.I("u.first_name"), goqu.I("u.last_name"), goqu.I("u.email"),
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author"), goqu.I("b.isbn"),
		).
		Order(goqu.I("r.reservation_date").Desc(), goqu.I("r.id").Asc()).
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

	var out []model.Reservation
	for rows.Next() {
		res := model.Reservation{User: &model.UserSummary{}, Book: &model.BookSummary{}}
		if err := rows.Scan(
			&res.ID, &res.UserID, &res.BookID, &res.ReservationDate,
			&res.Status, &res.CreatedAt, &res.UpdatedAt,
			&res.User.ID, &res.User.FirstName, &res.User.LastName, &res.User.Email,
			&res.Book.ID, &res.Book.Title, &res.Book.Author, &res.Book.ISBN,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}
