package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/studysphere/backend/core"
)

var (
	// errors
	ErrNotFound   = core.NewError(core.KindNotFound, "user not found")
	ErrUserExists = core.NewError(core.KindAlreadyExists, "user already exists")
)

type (
	Repository interface {
		// CreateUser returns ErrUserExists when the email is already registered.
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers returns users ordered by creation date.
		QueryUsers(ctx context.Context, filter *QueryFilter) ([]User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// IncrementProgress atomically adds one to a counter and reports whether a user matched.
		IncrementProgress(ctx context.Context, email string, counter Counter) (bool, error)
		// SetProgress overwrites all counters of a user.
		SetProgress(ctx context.Context, email string, progress Progress) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Register creates a User with zeroed progress. Registering a known email changes nothing and returns ErrUserExists.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, err
	}

	if _, err := svc.repo.GetUserByEmail(ctx, nu.Email); err == nil {
		return User{}, ErrUserExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, errors.Wrap(err, "finding user by email")
	}

	usr, err := svc.repo.CreateUser(ctx, User{
		Email:     nu.Email,
		Name:      nu.Name,
		Photo:     nu.Photo,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return User{}, ErrUserExists
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]User, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryUsers(ctx, filter)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanEmail(email))
}

// GetProgress returns the stored counters of a user, as they are.
func (svc *Service) GetProgress(ctx context.Context, email string) (Progress, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Progress{}, err
	}
	return usr.Progress, nil
}
