package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AlmamyHaidara/biblioteque/model"
	tokenrepo "github.com/AlmamyHaidara/biblioteque/repository/token"
	userrepo "github.com/AlmamyHaidara/biblioteque/repository/user"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
	"github.com/AlmamyHaidara/biblioteque/util/hash"
	jwtutil "github.com/AlmamyHaidara/biblioteque/util/jwt"
)

// ErrInvalidCredentials is deliberately the same for unknown email and
// wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Tokens is the pair returned by Login.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, *Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	users      userrepo.Repo
	tokens     tokenrepo.Repo
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func New(users userrepo.Repo, tokens tokenrepo.Repo, secret string, accessTTL, refreshTTL time.Duration) Service {
	return &service{
		users:      users,
		tokens:     tokens,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	existing, err := s.users.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("user with this email already exists")
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := model.RoleUser
	if req.Role != "" {
		role = model.Role(req.Role)
	}

	u := &model.User{
		Email:        req.Email,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperr.MapUnique(err, "user with this email already exists")
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, *Tokens, error) {
	u, err := s.users.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, nil, ErrInvalidCredentials
	}

	access, err := jwtutil.Issue(s.secret, u.ID, u.Email, string(u.Role), s.accessTTL)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := jwtutil.Issue(s.secret, u.ID, u.Email, string(u.Role), s.refreshTTL)
	if err != nil {
		return nil, nil, err
	}

	rt := &model.RefreshToken{
		Token:     refresh,
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.tokens.Create(ctx, rt); err != nil {
		return nil, nil, err
	}

	return u, &Tokens{AccessToken: access, RefreshToken: refresh, RefreshTTL: s.refreshTTL}, nil
}

// Refresh issues a new access token when the refresh token is both a valid
// JWT and still present, unexpired, in the store.
func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := jwtutil.Parse(s.secret, refreshToken)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	stored, err := s.tokens.Get(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if stored == nil || stored.ExpiresAt.Before(s.now()) {
		return "", ErrInvalidCredentials
	}

	userID, err := claims.UserID()
	if err != nil {
		return "", ErrInvalidCredentials
	}
	return jwtutil.Issue(s.secret, userID, claims.Email, claims.Role, s.accessTTL)
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Delete(ctx, refreshToken)
}

func (s *service) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.tokens.DeleteAllForUser(ctx, userID)
}
