package account

import (
	"context"

	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
)

var (
	// errors
	ErrNotFound    = errors.New("account not found")
	ErrEmailExists = errors.New("an account with this email already exists")
	ErrInvalidRole = errors.New("invalid role")
)

type (
	// Repository is one identity store. There is exactly one implementation
	// instance per role table (admin, user, coach) per backend.
	Repository interface {
		CreateAccount(ctx context.Context, acct Account) (Account, error)
		QueryAllAccounts(ctx context.Context, ordering []core.DBOrdering) ([]Account, error)
		GetAccountByID(ctx context.Context, id int) (Account, error)
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		UpdateAccount(ctx context.Context, acct Account) (Account, error)
		UpdatePassword(ctx context.Context, email string, hash []byte) error
		DeleteAccount(ctx context.Context, id int) error
	}

	// Registry maps a role discriminator to its backing store. It is built
	// once at startup and consulted wherever a caller supplies a role;
	// unknown roles fail closed with ErrInvalidRole.
	Registry struct {
		stores map[Role]Repository
	}
)

func NewRegistry(admin, user, coach Repository) *Registry {
	return &Registry{
		stores: map[Role]Repository{
			RoleAdmin: admin,
			RoleUser:  user,
			RoleCoach: coach,
		},
	}
}

func (r *Registry) Store(role Role) (Repository, error) {
	repo, ok := r.stores[role]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidRole, "role %q", role)
	}
	return repo, nil
}
