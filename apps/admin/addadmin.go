package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
)

// addAdmin updates or creates an admin account.
func (cli *commandLine) addAdmin(email, first, last, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	repo, err := cli.registry.Store(account.RoleAdmin)
	if err != nil {
		return err
	}

	acct, err := repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != account.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		acct = account.Account{
			Role:      account.RoleAdmin,
			Email:     email,
			FirstName: first,
			LastName:  last,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = acct.SetPassword(pwd); err != nil {
			return err
		}
		_, err = repo.CreateAccount(ctx, acct)
		return err
	}

	if first != "" {
		acct.FirstName = first
	}
	if last != "" {
		acct.LastName = last
	}
	acct.UpdatedAt = time.Now().UTC()
	if _, err = repo.UpdateAccount(ctx, acct); err != nil {
		return err
	}
	if err = acct.SetPassword(pwd); err != nil {
		return err
	}
	return repo.UpdatePassword(ctx, acct.Email, acct.PasswordHash)
}
