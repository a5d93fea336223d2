package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/api"
)

func (a *App) signup(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: signup <email> [user|admin]", ErrUsage)
	}

	role := "user"
	if len(args) == 2 {
		role = args[1]
	}
	r, err := parseRole(role)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}

	acc, err := a.client.Signup(ctx, args[0], password, r)
	if err != nil {
		return err
	}
	return a.print(acc)
}

func (a *App) signin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: signin <email>", ErrUsage)
	}

	password, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}

	pair, err := a.client.Signin(ctx, args[0], password)
	if err != nil {
		return err
	}
	return a.print(pair)
}

func (a *App) refresh(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: refresh [refresh_token]", ErrUsage)
	}
	if len(args) == 1 {
		pair := a.client.Tokens()
		pair.RefreshToken = args[0]
		a.client.SetTokens(pair)
	}

	pair, err := a.client.Refresh(ctx)
	if err != nil {
		return err
	}
	return a.print(pair)
}

func (a *App) whoami(ctx context.Context) error {
	acc, err := a.client.WhoAmI(ctx)
	if err != nil {
		return err
	}
	return a.print(acc)
}

func (a *App) account(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: account <account_id|email>", ErrUsage)
	}

	var (
		acc *api.Account
		err error
	)
	if strings.Contains(args[0], "@") {
		acc, err = a.client.GetAccountByEmail(ctx, args[0])
	} else {
		acc, err = a.client.GetAccount(ctx, args[0])
	}
	if err != nil {
		return err
	}
	return a.print(acc)
}

func (a *App) email(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: email <new_email> [account_id]", ErrUsage)
	}

	var id string
	if len(args) == 2 {
		id = args[1]
	}

	acc, err := a.client.UpdateEmail(ctx, id, args[0])
	if err != nil {
		return err
	}
	return a.print(acc)
}

func (a *App) passwd(ctx context.Context) error {
	oldPassword, err := GetPassword(a.reader, "Current password", a.out)
	if err != nil {
		return err
	}
	newPassword, err := GetPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword(a.reader, "Repeat new password", a.out)
	if err != nil {
		return err
	}
	if newPassword != confirm {
		return fmt.Errorf("%w: passwords do not match", ErrUsage)
	}

	if err := a.client.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

func (a *App) accounts(ctx context.Context) error {
	list, err := a.client.ListAccounts(ctx)
	if err != nil {
		return err
	}
	return a.print(list)
}

func (a *App) role(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: role <account_id> <user|admin>", ErrUsage)
	}
	r, err := parseRole(args[1])
	if err != nil {
		return err
	}

	acc, err := a.client.SetRole(ctx, args[0], r)
	if err != nil {
		return err
	}
	return a.print(acc)
}
