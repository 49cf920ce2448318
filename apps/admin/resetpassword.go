package main

import (
	"context"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
)

func (cli *commandLine) resetPassword(role, email, pwd string) error {
	ctx := context.Background()

	r, err := account.ParseRole(role)
	if err != nil {
		return err
	}
	repo, err := cli.registry.Store(r)
	if err != nil {
		return err
	}

	acct, err := repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err = acct.SetPassword(pwd); err != nil {
		return err
	}
	return repo.UpdatePassword(ctx, acct.Email, acct.PasswordHash)
}
