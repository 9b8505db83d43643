package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/AlmamyHaidara/biblioteque/model"
	userrepo "github.com/AlmamyHaidara/biblioteque/repository/user"
	"github.com/AlmamyHaidara/biblioteque/util/apperr"
	"github.com/AlmamyHaidara/biblioteque/util/hash"
)

// UpdatePatch carries the optional fields of a user update.
type UpdatePatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Role      *model.Role
}

type Service interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error
}

type service struct{ users userrepo.Repo }

func New(users userrepo.Repo) Service { return &service{users} }

func (s *service) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*model.User, error) {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}

	if patch.Email != nil && *patch.Email != u.Email {
		taken, err := s.users.ByEmail(ctx, *patch.Email)
		if err != nil {
			return nil, err
		}
		if taken != nil {
			return nil, apperr.Conflict("email already in use")
		}
		u.Email = *patch.Email
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, apperr.MapUnique(err, "email already in use")
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("user not found")
	}
	return s.users.Delete(ctx, id)
}

func (s *service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("user not found")
	}
	if !hash.Check(u.PasswordHash, current) {
		return apperr.BadInput("current password is incorrect")
	}
	hashed, err := hash.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, hashed)
}
