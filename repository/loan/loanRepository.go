package loanrepo

import (
	"context"
	"errors"
	"time"

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
	Insert(ctx context.Context, l *model.Loan) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	FindActive(ctx context.Context, userID, bookID uuid.UUID) (*model.Loan, error)
	HasActiveForBook(ctx context.Context, bookID uuid.UUID) (bool, error)
	Update(ctx context.Context, l *model.Loan) error
	List(ctx context.Context, f Filter) ([]model.Loan, int64, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

var dialect = goqu.Dialect("postgres")

const loanJoinCols = `l.id, l.user_id, l.book_id, l.loan_date, l.due_date, l.return_date,
	l.status, l.created_at, l.updated_at,
	u.id, u.first_name, u.last_name, u.email,
	b.id, b.title, b.author, b.isbn`

const loanJoin = `FROM loans l
	JOIN users u ON u.id = l.user_id
	JOIN books b ON b.id = l.book_id`

func scanJoinedLoan(row pgx.Row) (*model.Loan, error) {
	l := &model.Loan{User: &model.UserSummary{}, Book: &model.BookSummary{}}
	err := row.Scan(
		&l.ID, &l.UserID, &l.BookID, &l.LoanDate, &l.DueDate, &l.ReturnDate,
		&l.Status, &l.CreatedAt, &l.UpdatedAt,
		&l.User.ID, &l.User.FirstName, &l.User.LastName, &l.User.Email,
		&l.Book.ID, &l.Book.Title, &l.Book.Author, &l.Book.ISBN,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *repo) Insert(ctx context.Context, l *model.Loan) error {
	return r.db.Querier(ctx).QueryRow(ctx, `
		INSERT INTO loans (user_id, book_id, loan_date, due_date, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		l.UserID, l.BookID, l.LoanDate, l.DueDate, l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return scanJoinedLoan(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+loanJoinCols+` `+loanJoin+` WHERE l.id = $1`, id))
}

func (r *repo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	l := &model.Loan{}
	err := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT id, user_id, book_id, loan_date, due_date, return_date, status, created_at, updated_at
		FROM loans
		WHERE id = $1
		FOR UPDATE`, id,
	).Scan(&l.ID, &l.UserID, &l.BookID, &l.LoanDate, &l.DueDate, &l.ReturnDate, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *repo) FindActive(ctx context.Context, userID, bookID uuid.UUID) (*model.Loan, error) {
	l := &model.Loan{}
	err := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT id, user_id, book_id, loan_date, due_date, return_date, status, created_at, updated_at
		FROM loans
		WHERE user_id = $1 AND book_id = $2 AND status = 'ACTIVE'`,
		userID, bookID,
	).Scan(&l.ID, &l.UserID, &l.BookID, &l.LoanDate, &l.DueDate, &l.ReturnDate, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *repo) HasActiveForBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	var one int
	err := r.db.Querier(ctx).QueryRow(ctx,
		`SELECT 1 FROM loans WHERE book_id = $1 AND status = 'ACTIVE' LIMIT 1`, bookID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) Update(ctx context.Context, l *model.Loan) error {
	return r.db.Querier(ctx).QueryRow(ctx, `
		UPDATE loans
		SET due_date = $2, return_date = $3, status = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		l.ID, l.DueDate, l.ReturnDate, l.Status,
	).Scan(&l.UpdatedAt)
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.Loan, int64, error) {
	base := dialect.From(goqu.T("loans").As("l")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("l.user_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id"))))

	if f.Status != "" {
		base = base.Where(goqu.I("l.status").Eq(f.Status))
	}
	if f.UserID != nil {
		base = base.Where(goqu.I("l.user_id").Eq(*f.UserID))
	}
	if f.BookID != nil {
		base = base.Where(goqu.I("l.book_id").Eq(*f.BookID))
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
			goqu.I("l.id"), goqu.I("l.user_id"), goqu.I("l.book_id"), goqu.I("l.loan_date"),
			goqu.I("l.due_date"), goqu.I("l.return_date"), goqu.I("l.status"),
			goqu.I("l.created_at"), goqu.I("l.updated_at"),
			goqu.I("u.id"), goqu.I("u.first_name"), goqu.I("u.last_name"), goqu.I("u.email"),
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author"), goqu.I("b.isbn"),
		).
		Order(goqu.I("l.loan_date").Desc(), goqu.I("l.id").Asc()).
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

	var out []model.Loan
	for rows.Next() {
		l := model.Loan{User: &model.UserSummary{}, Book: &model.BookSummary{}}
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.BookID, &l.LoanDate, &l.DueDate, &l.ReturnDate,
			&l.Status, &l.CreatedAt, &l.UpdatedAt,
			&l.User.ID, &l.User.FirstName, &l.User.LastName, &l.User.Email,
			&l.Book.ID, &l.Book.Title, &l.Book.Author, &l.Book.ISBN,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// MarkOverdue flips ACTIVE loans past their due date to OVERDUE.
// Used by the nightly sweep, never by the ledger itself.
func (r *repo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE loans
		SET status = 'OVERDUE', updated_at = now()
		WHERE status = 'ACTIVE' AND due_date < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
