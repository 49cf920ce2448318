package account

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
)

type (
	ServiceInterface interface {
		Create(ctx context.Context, role Role, na NewAccount) (Account, error)
		QueryAll(ctx context.Context, role Role, ordering []core.DBOrdering) ([]Account, error)
		GetByID(ctx context.Context, role Role, id int) (Account, error)
		GetByEmail(ctx context.Context, role Role, email string) (Account, error)
		Update(ctx context.Context, role Role, id int, ua UpdateAccount) (Account, error)
		ChangePassword(ctx context.Context, role Role, id int, cp ChangePassword) error
		SetPassword(ctx context.Context, role Role, email, newPassword string) error
		UpdateAvatar(ctx context.Context, role Role, id int, up AvatarUpload) (Account, error)
		Delete(ctx context.Context, role Role, id int) error
	}

	Service struct {
		registry *Registry
		files    core.FileStore
		validate *validator.Validate
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(registry *Registry, files core.FileStore, validate *validator.Validate) *Service {
	return &Service{registry: registry, files: files, validate: validate}
}

// Registry exposes the role→store mapping to collaborating services
// (the auth flow resolves identities through it).
func (svc *Service) Registry() *Registry { return svc.registry }

func (svc *Service) Create(ctx context.Context, role Role, na NewAccount) (Account, error) {
	repo, err := svc.registry.Store(role)
	if err != nil {
		return Account{}, err
	}

	// email unique per role table
	if _, err = repo.GetAccountByEmail(ctx, na.Email); err == nil {
		return Account{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return Account{}, errors.Wrap(err, "checking email uniqueness")
	}

	now := time.Now().UTC()
	acct := Account{
		Role:        role,
		FirstName:   na.FirstName,
		LastName:    na.LastName,
		Email:       na.Email,
		DOB:         na.DOB,
		Gender:      na.Gender,
		Description: na.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = acct.SetPassword(na.Password); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}
	return repo.CreateAccount(ctx, acct)
}

func (svc *Service) QueryAll(ctx context.Context, role Role, ordering []core.DBOrdering) ([]Account, error) {
	repo, err := svc.registry.Store(role)
	if err != nil {
		return nil, err
	}
	return repo.QueryAllAccounts(ctx, ordering)
}

func (svc *Service) GetByID(ctx context.Context, role Role, id int) (Account, error) {
	repo, err := svc.registry.Store(role)
	if err != nil {
		return Account{}, err
	}
	return repo.GetAccountByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, role Role, email string) (Account, error) {
	repo, err := svc.registry.Store(role)
	if err != nil {
		return Account{}, err
	}
	return repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, role Role, id int, ua UpdateAccount) (Account, error) {
	repo, err := svc.registry.Store(role)
	if err != nil {
		return Account{}, err
	}

	orig, err := repo.GetAccountByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if err = ua.Validate(orig, svc.validate); err != nil {
		return Account{}, err
	}

	if ua.Email != orig.Email {
		if other, err := repo.GetAccountByEmail(ctx, ua.Email); err == nil && other.ID != orig.ID {
			return Account{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		} else if err != nil && errors.Cause(err) != ErrNotFound {
			return Account{}, errors.Wrap(err, "checking email uniqueness")
		}
	}

	orig.FirstName = ua.FirstName
	orig.LastName = ua.LastName
	orig.Email = ua.Email
	if ua.DOB != "" {
		orig.DOB = ua.DOB
	}
	if ua.Gender != "" {
		orig.Gender = ua.Gender
	}
	if ua.Description != "" {
		orig.Description = ua.Description
	}
	orig.UpdatedAt = time.Now().UTC()
	return repo.UpdateAccount(ctx, orig)
}

func (svc *Service) ChangePassword(ctx context.Context, role Role, id int, cp ChangePassword) error {
	repo, err := svc.registry.Store(role)
	if err != nil {
		return err
	}

	acct, err := repo.GetAccountByID(ctx, id)
	if err != nil {
		return err
	}
	if err = acct.CheckPassword(cp.Password); err != nil {
		return core.NewValidationError(
			errors.New("password mismatch"),
			core.FieldError{Field: "password", Error: "password does not match, please try again"},
		)
	}

	if err = acct.SetPassword(cp.NewPassword); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return repo.UpdatePassword(ctx, acct.Email, acct.PasswordHash)
}

// SetPassword overwrites the stored hash without an old-password check.
// Reserved for the OTP-verified reset flow.
func (svc *Service) SetPassword(ctx context.Context, role Role, email, newPassword string) error {
	repo, err := svc.registry.Store(role)
	if err != nil {
		return err
	}

	acct, err := repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err = acct.SetPassword(newPassword); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return repo.UpdatePassword(ctx, acct.Email, acct.PasswordHash)
}

func (svc *Service) UpdateAvatar(ctx context.Context, role Role, id int, up AvatarUpload) (Account, error) {
	repo, err := svc.registry.Store(role)
	if err != nil {
		return Account{}, err
	}

	acct, err := repo.GetAccountByID(ctx, id)
	if err != nil {
		return Account{}, err
	}

	content, err := base64.StdEncoding.DecodeString(up.File)
	if err != nil {
		return Account{}, core.NewValidationError(err, core.FieldError{Field: "file", Error: "file must be base64 encoded"})
	}

	key := fmt.Sprintf("avatars/%s/%d/%s%s", role, id, uuid.New(), filepath.Ext(up.FileName))
	url, err := svc.files.Save(ctx, key, up.ContentType, content)
	if err != nil {
		return Account{}, errors.Wrap(err, "saving avatar")
	}

	acct.Avatar = url
	acct.UpdatedAt = time.Now().UTC()
	return repo.UpdateAccount(ctx, acct)
}

func (svc *Service) Delete(ctx context.Context, role Role, id int) error {
	repo, err := svc.registry.Store(role)
	if err != nil {
		return err
	}
	return repo.DeleteAccount(ctx, id)
}
