// Package client talks to the gophauth gRPC endpoint on behalf of the CLI.
package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/api"
)

type Client interface {
	Close() error
	Signup(ctx context.Context, email, password string, role int32) (*api.Account, error)
	Signin(ctx context.Context, email, password string) (*api.TokenPair, error)
	Refresh(ctx context.Context) (*api.TokenPair, error)
	WhoAmI(ctx context.Context) (*api.Account, error)
	GetAccount(ctx context.Context, accountID string) (*api.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*api.Account, error)
	UpdateEmail(ctx context.Context, accountID, email string) (*api.Account, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	ListAccounts(ctx context.Context) ([]api.Account, error)
	SetRole(ctx context.Context, accountID string, role int32) (*api.Account, error)
	SetTokens(pair api.TokenPair)
	Tokens() api.TokenPair
}
