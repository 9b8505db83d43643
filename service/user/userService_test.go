package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AlmamyHaidara/biblioteque/model"
	userrepo "github.com/AlmamyHaidara/biblioteque/repository/user"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
	"github.com/AlmamyHaidara/biblioteque/util/hash"
)

type mockUsers struct {
	byIDFn           func(ctx context.Context, id uuid.UUID) (*model.User, error)
	byEmailFn        func(ctx context.Context, email string) (*model.User, error)
	updateFn         func(ctx context.Context, u *model.User) error
	updatePasswordFn func(ctx context.Context, id uuid.UUID, hash string) error
}

var _ userrepo.Repo = (*mockUsers)(nil)

func (m *mockUsers) Create(ctx context.Context, u *model.User) error { return nil }
func (m *mockUsers) ByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *mockUsers) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, nil
	}
	return m.byEmailFn(ctx, email)
}
func (m *mockUsers) List(ctx context.Context) ([]model.User, error) { return nil, nil }
func (m *mockUsers) Update(ctx context.Context, u *model.User) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, u)
}
func (m *mockUsers) UpdatePassword(ctx context.Context, id uuid.UUID, h string) error {
	if m.updatePasswordFn == nil {
		return nil
	}
	return m.updatePasswordFn(ctx, id, h)
}
func (m *mockUsers) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func knownUser(u *model.User) *mockUsers {
	return &mockUsers{byIDFn: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
		if id == u.ID {
			cp := *u
			return &cp, nil
		}
		return nil, nil
	}}
}

func TestUpdate_AppliesPatch(t *testing.T) {
	u := &model.User{ID: uuid.New(), Email: "old@example.com", FirstName: "Old", Role: model.RoleUser}
	m := knownUser(u)
	svc := New(m)

	first := "New"
	role := model.RoleLibrarian
	got, err := svc.Update(context.Background(), u.ID, UpdatePatch{FirstName: &first, Role: &role})
	require.NoError(t, err)
	require.Equal(t, "New", got.FirstName)
	require.Equal(t, model.RoleLibrarian, got.Role)
	require.Equal(t, "old@example.com", got.Email)
}

func TestUpdate_EmailTaken(t *testing.T) {
	u := &model.User{ID: uuid.New(), Email: "old@example.com"}
	m := knownUser(u)
	m.byEmailFn = func(ctx context.Context, email string) (*model.User, error) {
		return &model.User{ID: uuid.New(), Email: email}, nil
	}
	svc := New(m)

	email := "taken@example.com"
	_, err := svc.Update(context.Background(), u.ID, UpdatePatch{Email: &email})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUpdate_NotFound(t *testing.T) {
	svc := New(&mockUsers{})
	first := "X"
	_, err := svc.Update(context.Background(), uuid.New(), UpdatePatch{FirstName: &first})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestChangePassword_Success(t *testing.T) {
	hashed, err := hash.HashPassword("current-pw")
	require.NoError(t, err)
	u := &model.User{ID: uuid.New(), PasswordHash: hashed}

	var newHash string
	m := knownUser(u)
	m.updatePasswordFn = func(ctx context.Context, id uuid.UUID, h string) error {
		newHash = h
		return nil
	}
	svc := New(m)

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, "current-pw", "next-pw"))
	require.True(t, hash.Check(newHash, "next-pw"))
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	hashed, err := hash.HashPassword("current-pw")
	require.NoError(t, err)
	u := &model.User{ID: uuid.New(), PasswordHash: hashed}
	svc := New(knownUser(u))

	err = svc.ChangePassword(context.Background(), u.ID, "wrong", "next-pw")
	require.Equal(t, apperr.KindBadInput, apperr.KindOf(err))
}

func TestDelete_NotFound(t *testing.T) {
	svc := New(&mockUsers{})
	err := svc.Delete(context.Background(), uuid.New())
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
