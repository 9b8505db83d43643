package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AlmamyHaidara/biblioteque/model"
	tokenrepo "github.com/AlmamyHaidara/biblioteque/repository/token"
	userrepo "github.com/AlmamyHaidara/biblioteque/repository/user"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
	"github.com/AlmamyHaidara/biblioteque/util/hash"
	jwtutil "github.com/AlmamyHaidara/biblioteque/util/jwt"
)

type mockUsers struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

var _ userrepo.Repo = (*mockUsers)(nil)

func (m *mockUsers) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		u.ID = uuid.New()
		return nil
	}
	return m.createFn(ctx, u)
}
func (m *mockUsers) ByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, nil
}
func (m *mockUsers) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, nil
	}
	return m.byEmailFn(ctx, email)
}
func (m *mockUsers) List(ctx context.Context) ([]model.User, error)  { return nil, nil }
func (m *mockUsers) Update(ctx context.Context, u *model.User) error { return nil }
func (m *mockUsers) UpdatePassword(ctx context.Context, id uuid.UUID, h string) error {
	return nil
}
func (m *mockUsers) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type mockTokens struct {
	createFn func(ctx context.Context, t *model.RefreshToken) error
	getFn    func(ctx context.Context, token string) (*model.RefreshToken, error)
	deleteFn func(ctx context.Context, token string) error
}

var _ tokenrepo.Repo = (*mockTokens)(nil)

func (m *mockTokens) Create(ctx context.Context, t *model.RefreshToken) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, t)
}
func (m *mockTokens) Get(ctx context.Context, token string) (*model.RefreshToken, error) {
	if m.getFn == nil {
		return nil, nil
	}
	return m.getFn(ctx, token)
}
func (m *mockTokens) Delete(ctx context.Context, token string) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, token)
}
func (m *mockTokens) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error { return nil }
func (m *mockTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

const testSecret = "test-secret"

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockUsers{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = uuid.New()
			return nil
		},
	}
	svc := New(m, &mockTokens{}, testSecret, 15*time.Minute, 7*24*time.Hour)

	u, err := svc.Register(ctx, model.RegisterReq{
		Email:     "new@example.com",
		Password:  "supersecret",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, u.ID)
	require.Equal(t, model.RoleUser, u.Role)
	require.NotEmpty(t, u.PasswordHash)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegister_ExplicitRole(t *testing.T) {
	svc := New(&mockUsers{}, &mockTokens{}, testSecret, time.Minute, time.Hour)

	u, err := svc.Register(context.Background(), model.RegisterReq{
		Email:     "lib@example.com",
		Password:  "supersecret",
		FirstName: "Lib",
		LastName:  "Rarian",
		Role:      "LIBRARIAN",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleLibrarian, u.Role)
}

func TestRegister_EmailTaken(t *testing.T) {
	m := &mockUsers{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: uuid.New(), Email: email}, nil
		},
	}
	svc := New(m, &mockTokens{}, testSecret, time.Minute, time.Hour)

	_, err := svc.Register(context.Background(), model.RegisterReq{
		Email:     "taken@example.com",
		Password:  "supersecret",
		FirstName: "A",
		LastName:  "B",
	})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLogin_Success(t *testing.T) {
	pw := "supersecret"
	u := &model.User{ID: uuid.New(), Email: "u@example.com", PasswordHash: mustHash(t, pw), Role: model.RoleUser}

	var stored *model.RefreshToken
	m := &mockUsers{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return u, nil },
	}
	tm := &mockTokens{
		createFn: func(ctx context.Context, t *model.RefreshToken) error {
			stored = t
			return nil
		},
	}
	svc := New(m, tm, testSecret, 15*time.Minute, 7*24*time.Hour)

	got, tokens, err := svc.Login(context.Background(), model.LoginReq{Email: u.Email, Password: pw})
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.NotNil(t, stored)
	require.Equal(t, tokens.RefreshToken, stored.Token)
	require.Equal(t, u.ID, stored.UserID)

	claims, err := jwtutil.Parse(testSecret, tokens.AccessToken)
	require.NoError(t, err)
	uid, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, u.ID, uid)
	require.Equal(t, u.Email, claims.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	u := &model.User{ID: uuid.New(), Email: "u@example.com", PasswordHash: mustHash(t, "correct")}
	m := &mockUsers{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return u, nil },
	}
	svc := New(m, &mockTokens{}, testSecret, time.Minute, time.Hour)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: u.Email, Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := New(&mockUsers{}, &mockTokens{}, testSecret, time.Minute, time.Hour)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Email: "nobody@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_Success(t *testing.T) {
	userID := uuid.New()
	refresh, err := jwtutil.Issue(testSecret, userID, "u@example.com", "USER", time.Hour)
	require.NoError(t, err)

	tm := &mockTokens{
		getFn: func(ctx context.Context, token string) (*model.RefreshToken, error) {
			return &model.RefreshToken{Token: token, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	svc := New(&mockUsers{}, tm, testSecret, 15*time.Minute, time.Hour)

	access, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := jwtutil.Parse(testSecret, access)
	require.NoError(t, err)
	uid, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, userID, uid)
}

func TestRefresh_Revoked(t *testing.T) {
	refresh, err := jwtutil.Issue(testSecret, uuid.New(), "u@example.com", "USER", time.Hour)
	require.NoError(t, err)

	// Valid JWT, but logged out: not in the store anymore.
	svc := New(&mockUsers{}, &mockTokens{}, testSecret, time.Minute, time.Hour)
	_, err = svc.Refresh(context.Background(), refresh)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_ExpiredInStore(t *testing.T) {
	refresh, err := jwtutil.Issue(testSecret, uuid.New(), "u@example.com", "USER", time.Hour)
	require.NoError(t, err)

	tm := &mockTokens{
		getFn: func(ctx context.Context, token string) (*model.RefreshToken, error) {
			return &model.RefreshToken{Token: token, ExpiresAt: time.Now().Add(-time.Minute)}, nil
		},
	}
	svc := New(&mockUsers{}, tm, testSecret, time.Minute, time.Hour)

	_, err = svc.Refresh(context.Background(), refresh)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_Garbage(t *testing.T) {
	svc := New(&mockUsers{}, &mockTokens{}, testSecret, time.Minute, time.Hour)
	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_DeletesToken(t *testing.T) {
	var deleted string
	tm := &mockTokens{
		deleteFn: func(ctx context.Context, token string) error {
			deleted = token
			return nil
		},
	}
	svc := New(&mockUsers{}, tm, testSecret, time.Minute, time.Hour)

	require.NoError(t, svc.Logout(context.Background(), "tok-123"))
	require.Equal(t, "tok-123", deleted)
}

func TestRegister_CreateError(t *testing.T) {
	m := &mockUsers{
		createFn: func(ctx context.Context, u *model.User) error { return errors.New("db down") },
	}
	svc := New(m, &mockTokens{}, testSecret, time.Minute, time.Hour)

	_, err := svc.Register(context.Background(), model.RegisterReq{
		Email:     "x@example.com",
		Password:  "supersecret",
		FirstName: "X",
		LastName:  "Y",
	})
	require.Error(t, err)
	require.Equal(t, apperr.Kind(""), apperr.KindOf(err))
}
