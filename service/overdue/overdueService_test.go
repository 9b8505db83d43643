package overdue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AlmamyHaidara/biblioteque/model"
	loanrepo "github.com/AlmamyHaidara/biblioteque/repository/loan"
	tokenrepo "github.com/AlmamyHaidara/biblioteque/repository/token"
)

type mockLoans struct {
	markOverdueFn func(ctx context.Context, now time.Time) (int64, error)
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
	return false, nil
}
func (m *mockLoans) Update(ctx context.Context, l *model.Loan) error { return nil }
func (m *mockLoans) List(ctx context.Context, f loanrepo.Filter) ([]model.Loan, int64, error) {
	return nil, 0, nil
}
func (m *mockLoans) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	if m.markOverdueFn == nil {
		return 0, nil
	}
	return m.markOverdueFn(ctx, now)
}

type mockTokens struct {
	deleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
}

var _ tokenrepo.Repo = (*mockTokens)(nil)

func (m *mockTokens) Create(ctx context.Context, t *model.RefreshToken) error { return nil }
func (m *mockTokens) Get(ctx context.Context, token string) (*model.RefreshToken, error) {
	return nil, nil
}
func (m *mockTokens) Delete(ctx context.Context, token string) error               { return nil }
func (m *mockTokens) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error { return nil }
func (m *mockTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFn == nil {
		return 0, nil
	}
	return m.deleteExpiredFn(ctx, now)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_SweepsBoth(t *testing.T) {
	var markedAt, prunedAt time.Time
	loans := &mockLoans{
		markOverdueFn: func(ctx context.Context, now time.Time) (int64, error) {
			markedAt = now
			return 3, nil
		},
	}
	tokens := &mockTokens{
		deleteExpiredFn: func(ctx context.Context, now time.Time) (int64, error) {
			prunedAt = now
			return 2, nil
		},
	}

	svc := New(loans, tokens, discard()).(*service)
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	require.NoError(t, svc.Run(context.Background()))
	require.Equal(t, fixed, markedAt)
	require.Equal(t, fixed, prunedAt)
}

func TestRun_MarkError(t *testing.T) {
	loans := &mockLoans{
		markOverdueFn: func(ctx context.Context, now time.Time) (int64, error) {
			return 0, errors.New("db down")
		},
	}
	tokens := &mockTokens{
		deleteExpiredFn: func(ctx context.Context, now time.Time) (int64, error) {
			t.Fatal("prune must not run after a failed sweep")
			return 0, nil
		},
	}

	svc := New(loans, tokens, discard())
	require.Error(t, svc.Run(context.Background()))
}
